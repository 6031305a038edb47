package logx

import "go.uber.org/zap"

// New builds the production logger shared by every binary.
func New(service string) *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return l.With(zap.String("service", service))
}
