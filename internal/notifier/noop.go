package notifier

import "FuelWatch/internal/model"

// NoopNotifier is used when no recipients are configured.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (n *NoopNotifier) SendReport(_ string, _ model.Dataset) error { return nil }
