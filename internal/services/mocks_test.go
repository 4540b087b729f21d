package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicwatch/internal/models"
	"civicwatch/internal/utils"
	"civicwatch/pkg/constants"
	"civicwatch/pkg/errors"
)

// In-memory repository doubles. They mirror the real adapters' contracts,
// including the conditional-write semantics of vote toggles and the coupled
// status/audit write, so the services can be exercised without a database.

type mockReportRepo struct {
	mu      sync.Mutex
	reports map[primitive.ObjectID]*models.Report

	// casConflicts makes the next n conditional vote writes fail with a
	// transient conflict before anything is applied.
	casConflicts int
	// beforeCAS runs once, between the caller's read and its conditional
	// write, with the lock held. It lets a test interleave a competing
	// writer at the worst possible moment.
	beforeCAS func(r *mockReportRepo)
}

func newMockReportRepo() *mockReportRepo {
	return &mockReportRepo{reports: make(map[primitive.ObjectID]*models.Report)}
}

func (r *mockReportRepo) Create(ctx context.Context, report *models.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}
	now := time.Now()
	report.CreatedAt = now
	report.UpdatedAt = now
	if report.Status == "" {
		report.Status = constants.StatusNew
	}
	if report.UpvotedBy == nil {
		report.UpvotedBy = []primitive.ObjectID{}
	}
	report.UpvoteCount = int64(len(report.UpvotedBy))

	r.reports[report.ID] = copyReport(report)
	return nil
}

func (r *mockReportRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.reports[id]
	if !ok {
		return nil, errors.NewReportNotFoundError()
	}
	return copyReport(stored), nil
}

func (r *mockReportRepo) List(ctx context.Context, criteria *models.FilterCriteria, params *utils.PaginationParams) (*utils.PaginationResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]*models.Report, 0, len(r.reports))
	for _, report := range r.reports {
		if matchesCriteria(report, criteria) {
			matched = append(matched, copyReport(report))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	return utils.CreatePaginationResult(matched, params, int64(len(matched))), nil
}

func (r *mockReportRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reports[id]; !ok {
		return errors.NewReportNotFoundError()
	}
	delete(r.reports, id)
	return nil
}

func (r *mockReportRepo) CompareAndSetVotes(ctx context.Context, id primitive.ObjectID, expected, updated []primitive.ObjectID, count int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.casConflicts > 0 {
		r.casConflicts--
		return errors.NewTransientConflictError("Report")
	}
	if r.beforeCAS != nil {
		hook := r.beforeCAS
		r.beforeCAS = nil
		hook(r)
	}

	stored, ok := r.reports[id]
	if !ok || !sameIDSet(stored.UpvotedBy, expected) {
		return errors.NewTransientConflictError("Report")
	}

	stored.UpvotedBy = append([]primitive.ObjectID(nil), updated...)
	stored.UpvoteCount = count
	stored.UpdatedAt = time.Now()
	return nil
}

// toggleDirect flips membership on the stored document without going through
// the conditional write. Callers hold the lock (beforeCAS hook).
func (r *mockReportRepo) toggleDirect(id primitive.ObjectID, userID primitive.ObjectID) {
	stored, ok := r.reports[id]
	if !ok {
		return
	}
	stored.UpvotedBy = toggleMembership(stored.UpvotedBy, userID)
	stored.UpvoteCount = int64(len(stored.UpvotedBy))
}

func copyReport(report *models.Report) *models.Report {
	clone := *report
	clone.UpvotedBy = append([]primitive.ObjectID(nil), report.UpvotedBy...)
	return &clone
}

func sameIDSet(a, b []primitive.ObjectID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func matchesCriteria(report *models.Report, criteria *models.FilterCriteria) bool {
	if criteria.IsEmpty() {
		return true
	}
	return containsOrEmpty(criteria.Districts, report.District) &&
		containsOrEmpty(criteria.Categories, report.Category) &&
		containsOrEmpty(criteria.Statuses, report.Status)
}

func containsOrEmpty(values []string, v string) bool {
	if len(values) == 0 {
		return true
	}
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

type mockCommentRepo struct {
	mu       sync.Mutex
	comments []*models.Comment
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{}
}

func (r *mockCommentRepo) Insert(ctx context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	comment.CreatedAt = time.Now()

	clone := *comment
	r.comments = append(r.comments, &clone)
	return nil
}

func (r *mockCommentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.comments {
		if c.ID == id {
			clone := *c
			return &clone, nil
		}
	}
	return nil, errors.NewCommentNotFoundError()
}

func (r *mockCommentRepo) ListByPost(ctx context.Context, postID primitive.ObjectID) ([]*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*models.Comment, 0)
	for _, c := range r.comments {
		if c.PostID == postID {
			clone := *c
			clone.Replies = nil
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (r *mockCommentRepo) SoftDelete(ctx context.Context, postID, commentID primitive.ObjectID, deletedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.comments {
		if c.ID == commentID && c.PostID == postID {
			c.IsDeleted = true
			c.DeletedBy = deletedBy
			return nil
		}
	}
	return errors.NewCommentNotFoundError()
}

type mockStatusRepo struct {
	reports *mockReportRepo

	mu      sync.Mutex
	updates map[primitive.ObjectID][]*models.StatusUpdate

	// txConflicts makes the next n coupled writes fail as transient
	// conflicts, leaving neither side applied. txFailures does the same
	// with a hard database error. appendCalls counts attempts.
	txConflicts int
	txFailures  int
	appendCalls int
}

func newMockStatusRepo(reports *mockReportRepo) *mockStatusRepo {
	return &mockStatusRepo{
		reports: reports,
		updates: make(map[primitive.ObjectID][]*models.StatusUpdate),
	}
}

func (r *mockStatusRepo) AppendWithStatus(ctx context.Context, update *models.StatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.appendCalls++
	if r.txConflicts > 0 {
		r.txConflicts--
		return errors.NewTransientConflictError("Report")
	}
	if r.txFailures > 0 {
		r.txFailures--
		return errors.NewDatabaseError("Status transaction failed", nil)
	}

	r.reports.mu.Lock()
	stored, ok := r.reports.reports[update.PostID]
	if !ok {
		r.reports.mu.Unlock()
		return errors.NewReportNotFoundError()
	}

	if update.ID.IsZero() {
		update.ID = primitive.NewObjectID()
	}
	update.CreatedAt = time.Now()

	stored.Status = update.Status
	stored.UpdatedAt = update.CreatedAt
	r.reports.mu.Unlock()

	clone := *update
	r.updates[update.PostID] = append(r.updates[update.PostID], &clone)
	return nil
}

func (r *mockStatusRepo) ListByPost(ctx context.Context, postID primitive.ObjectID) ([]*models.StatusUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*models.StatusUpdate, 0, len(r.updates[postID]))
	for _, u := range r.updates[postID] {
		clone := *u
		result = append(result, &clone)
	}
	return result, nil
}

type mockPresetRepo struct {
	mu      sync.Mutex
	presets map[string]*models.FilterPreset
}

func newMockPresetRepo() *mockPresetRepo {
	return &mockPresetRepo{presets: make(map[string]*models.FilterPreset)}
}

func (r *mockPresetRepo) EnsureSystemDefault(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.presets {
		if p.Name == constants.SystemDefaultPresetName {
			return nil
		}
	}
	now := time.Now()
	preset := &models.FilterPreset{
		ID:              uuid.NewString(),
		Name:            constants.SystemDefaultPresetName,
		IsSystemDefault: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	r.presets[preset.ID] = preset
	return nil
}

func (r *mockPresetRepo) Create(ctx context.Context, preset *models.FilterPreset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.presets {
		if existing.Name == preset.Name {
			return errors.NewPresetNameTakenError()
		}
	}
	if preset.ID == "" {
		preset.ID = uuid.NewString()
	}
	now := time.Now()
	preset.CreatedAt = now
	preset.UpdatedAt = now

	clone := *preset
	r.presets[preset.ID] = &clone
	return nil
}

func (r *mockPresetRepo) GetByID(ctx context.Context, id string) (*models.FilterPreset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	preset, ok := r.presets[id]
	if !ok {
		return nil, errors.NewPresetNotFoundError()
	}
	clone := *preset
	return &clone, nil
}

func (r *mockPresetRepo) List(ctx context.Context) ([]*models.FilterPreset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*models.FilterPreset, 0, len(r.presets))
	for _, p := range r.presets {
		clone := *p
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].IsSystemDefault != result[j].IsSystemDefault {
			return result[i].IsSystemDefault
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *mockPresetRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.presets[id]; !ok {
		return errors.NewPresetNotFoundError()
	}
	delete(r.presets, id)
	return nil
}

func (r *mockPresetRepo) SetDefault(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.presets[id]
	if !ok {
		return errors.NewPresetNotFoundError()
	}
	for _, p := range r.presets {
		p.IsDefault = false
	}
	target.IsDefault = true
	return nil
}

func (r *mockPresetRepo) GetDefault(ctx context.Context) (*models.FilterPreset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.presets {
		if p.IsDefault {
			clone := *p
			return &clone, nil
		}
	}
	return nil, errors.NewPresetNotFoundError()
}

type mockAppliedFilterRepo struct {
	mu         sync.Mutex
	lastPreset string
	adhoc      *models.FilterCriteria
}

func newMockAppliedFilterRepo() *mockAppliedFilterRepo {
	return &mockAppliedFilterRepo{}
}

func (r *mockAppliedFilterRepo) SetLastPreset(ctx context.Context, presetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastPreset = presetID
	r.adhoc = nil
	return nil
}

func (r *mockAppliedFilterRepo) SetAdhocCriteria(ctx context.Context, criteria *models.FilterCriteria) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *criteria
	r.adhoc = &clone
	r.lastPreset = ""
	return nil
}

func (r *mockAppliedFilterRepo) GetLastPreset(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lastPreset, nil
}

func (r *mockAppliedFilterRepo) GetAdhocCriteria(ctx context.Context) (*models.FilterCriteria, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.adhoc == nil {
		return nil, nil
	}
	clone := *r.adhoc
	return &clone, nil
}

func (r *mockAppliedFilterRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastPreset = ""
	r.adhoc = nil
	return nil
}
