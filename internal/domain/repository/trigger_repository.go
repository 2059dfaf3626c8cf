package repository

import (
	"context"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/capture"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/entity"
)

// TriggerCatalog reads installed capture triggers from the database catalog.
type TriggerCatalog interface {
	ListCaptureTriggers(ctx context.Context) ([]entity.CaptureTrigger, error)
}

// TriggerInstaller is the explicit administrative path that changes which
// capture triggers exist.
type TriggerInstaller interface {
	Install(ctx context.Context, tables []capture.Table) error
	Uninstall(ctx context.Context, tables []capture.Table) error
}
