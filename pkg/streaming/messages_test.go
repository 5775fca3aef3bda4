package streaming

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/asteain-ninia/ExoClim/pkg/core"
)

func TestNewEndRunPayload(t *testing.T) {
	var res core.SimulationResult
	res.Ocean.Streamlines[0] = make([]core.Streamline, 3)
	res.Ocean.Streamlines[6] = make([]core.Streamline, 2)
	res.Ocean.Impacts[6] = make([]core.Impact, 4)
	res.Ocean.Diagnostics = make([]core.Diagnostic, 1)
	res.Ocean.Stats = []core.MonthStats{{Month: 0}, {Month: 6}}

	p := NewEndRunPayload("r", "complete", &res, nil)
	assert.Equal(t, 5, p.Streamlines)
	assert.Equal(t, 4, p.Impacts)
	assert.Equal(t, 1, p.Diagnostics)
	assert.Len(t, p.Stats, 2)
	assert.Empty(t, p.Error)
}

func TestNewEndRunPayload_Failed(t *testing.T) {
	p := NewEndRunPayload("r", "failed", nil, errors.New("boom"))
	assert.Equal(t, "boom", p.Error)
	assert.NotNil(t, p.Stats)
	assert.Zero(t, p.Streamlines)
}
