package stripe

import (
	"fmt"

	stripego "github.com/stripe/stripe-go/v74"

	"github.com/floradex/billing/internal/shared/logger"
)

// leveledLogger routes stripe-go's internal logging into the service
// logger at debug level, except errors.
type leveledLogger struct {
	log logger.Interface
}

var _ stripego.LeveledLoggerInterface = leveledLogger{}

func (l leveledLogger) Debugf(format string, v ...any) { l.log.Debug(fmt.Sprintf(format, v...)) }
func (l leveledLogger) Infof(format string, v ...any)  { l.log.Debug(fmt.Sprintf(format, v...)) }
func (l leveledLogger) Warnf(format string, v ...any)  { l.log.Warn(fmt.Sprintf(format, v...)) }
func (l leveledLogger) Errorf(format string, v ...any) { l.log.Error(fmt.Sprintf(format, v...)) }
