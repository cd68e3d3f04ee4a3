// Package leads writes completed lead-capture records.
package leads

import (
	"context"
	"strings"

	"github.com/bytecode-faq-assistant/server/internal/agent/model"
	"github.com/bytecode-faq-assistant/server/internal/agent/sink"
	logx "github.com/bytecode-faq-assistant/server/pkg/logger"
)

type Recorder struct {
	sink sink.LineSink
}

func NewRecorder(s sink.LineSink) *Recorder {
	return &Recorder{sink: s}
}

// Format renders a lead as "name,email,projectDetails". Fields are written
// verbatim; commas inside a field are not escaped.
func Format(lead model.Lead) string {
	return strings.Join([]string{lead.Name, lead.Email, lead.ProjectDetails}, ",")
}

// Record appends the lead. Errors are returned for the caller to log; the
// conversation continues either way.
func (r *Recorder) Record(ctx context.Context, lead model.Lead) error {
	if err := r.sink.Append(ctx, Format(lead)); err != nil {
		return err
	}
	logx.Info().Str("email", lead.Email).Msg("Lead recorded")
	return nil
}
