package worker

import (
	"ticketops-web/internal/config"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func RegisterHandlers(mux *asynq.ServeMux, db *sqlx.DB, redis *redis.Client, cfg *config.Config) {
	importHandler := NewImportTaskHandler(db, redis, cfg)
	mux.HandleFunc("receipt:import", importHandler.Handle)

	posHandler := NewPOSSyncTaskHandler(db, cfg)
	mux.HandleFunc("pos:sync", posHandler.Handle)
}
