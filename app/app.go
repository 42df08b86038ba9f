package app

import (
	"database/sql"

	"github.com/go-chi/oauth"

	"github.com/ngodesk/formflow/config"
	"github.com/ngodesk/formflow/storage"
)

type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config

	// Files is the storage collaborator file answers resolve through.
	Files *storage.Local
}
