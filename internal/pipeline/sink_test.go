package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iiroan/formwatch/internal/validate"
)

func TestFanoutForwardsInOrder(t *testing.T) {
	var calls []string
	record := func(name string) SinkFuncs {
		return SinkFuncs{
			OnFieldStatus: func(kind validate.Kind, reason string, valid bool) {
				calls = append(calls, name+":"+kind.String())
			},
			OnSubmitEnabled: func(enabled bool) {
				calls = append(calls, name+":submit")
			},
		}
	}

	sink := Fanout{record("a"), SinkFuncs{}, record("b")}
	sink.FieldStatus(validate.Email, "", true)
	sink.SubmitEnabled(true)

	assert.Equal(t, []string{"a:email", "b:email", "a:submit", "b:submit"}, calls)
}
