package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestTransientTransactionClassification(t *testing.T) {
	transient := mongo.CommandError{
		Code:   112,
		Name:   "WriteConflict",
		Labels: []string{"TransientTransactionError"},
	}
	unknownCommit := mongo.CommandError{
		Code:   50,
		Name:   "MaxTimeMSExpired",
		Labels: []string{"UnknownTransactionCommitResult"},
	}
	hard := mongo.CommandError{
		Code: 13,
		Name: "Unauthorized",
	}

	assert.True(t, isTransientTransactionError(transient))
	assert.True(t, isTransientTransactionError(unknownCommit))
	assert.False(t, isTransientTransactionError(hard))
	assert.False(t, isTransientTransactionError(fmt.Errorf("connection refused")))
}
