package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/queue-service/internal/domain"
)

func TestToDomainError_QueueTaxonomy(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"queue empty", domain.ErrQueueEmpty, "QUEUE_EMPTY", http.StatusNotFound},
		{"creation failed", fmt.Errorf("%w: disk full", domain.ErrCreationFailed), "CREATION_FAILED", http.StatusInternalServerError},
		{"reset failed", domain.ErrResetFailed, "RESET_FAILED", http.StatusInternalServerError},
		{"store unavailable", domain.ErrStoreUnavailable, "STORE_UNAVAILABLE", http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			de := ToDomainError(tc.err)
			assert.Equal(t, tc.wantCode, de.Code)
			assert.Equal(t, tc.wantStatus, de.HTTPStatus)
		})
	}
}

func TestToDomainError_PassesThroughDomainError(t *testing.T) {
	original := NewDomainError("VALIDATION_FAILED", "bad limit", http.StatusBadRequest, nil)
	de := ToDomainError(fmt.Errorf("handler: %w", original))
	assert.Equal(t, original, de)
}

func TestToDomainError_Nil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}
