package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("bad %s", "status"), KindValidation},
		{"forbidden", Forbidden("no"), KindForbidden},
		{"wrapped not found", fmt.Errorf("load: %w", NotFound("task not found")), KindNotFound},
		{"conflict", Conflict("dup"), KindConflict},
		{"unauthenticated", Unauthenticated("token"), KindUnauthenticated},
		{"plain error", errors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestMessage_HidesInternal(t *testing.T) {
	assert.Equal(t, "internal server error", Message(Internal("create task", errors.New("pq: relation missing"))))
	assert.Equal(t, "internal server error", Message(errors.New("raw")))
	assert.Equal(t, "Workspace not found", Message(NotFound("Workspace not found")))
}

func TestFromStore(t *testing.T) {
	assert.Nil(t, FromStore(nil, "task"))
	assert.True(t, Is(FromStore(gorm.ErrRecordNotFound, "task"), KindNotFound))
	assert.True(t, Is(FromStore(gorm.ErrDuplicatedKey, "membership"), KindConflict))
	assert.True(t, Is(FromStore(errors.New("UNIQUE constraint failed: workspace_members.user_id"), "membership"), KindConflict))
	assert.True(t, Is(FromStore(errors.New("connection reset"), "task"), KindInternal))

	orig := Forbidden("nope")
	assert.Same(t, orig, FromStore(orig, "task"))
}
