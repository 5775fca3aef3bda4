// internal/storage/storage_test.go
package storage_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/asteain-ninia/ExoClim/internal/model"
	"github.com/asteain-ninia/ExoClim/internal/storage"
)

func TestRunStatus(t *testing.T) {
	assert.Equal(t, model.RunStatusComplete, storage.RunStatus(nil))
	assert.Equal(t, model.RunStatusFailed, storage.RunStatus(errors.New("x")))
}
