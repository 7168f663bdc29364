package cmd

import (
	"context"
	"log"

	"github.com/eisenwinter/veluxidp/db"
	"github.com/eisenwinter/veluxidp/events"
	"github.com/eisenwinter/veluxidp/events/event"
	"github.com/eisenwinter/veluxidp/sanitize"
	"github.com/eisenwinter/veluxidp/tokens"
	"github.com/eisenwinter/veluxidp/user"
	"github.com/eisenwinter/veluxidp/velux"
	"go.uber.org/zap"
)

func mustResolveUsableDataStore() db.RecordStore {
	var dataStore db.RecordStore
	var err error
	logger := TopLevelLogger.Named("database")
	switch LoadedConfig.Database.Type {
	case "dynamodb":
		dataStore, err = db.NewDynamoStore(context.Background(), logger, LoadedConfig.DynamoDB)
	case "sqlite":
		dataStore, err = db.NewSqliteStore(logger, LoadedConfig.Database)
	case "mysql":
		dataStore, err = db.NewMysqlStore(logger, LoadedConfig.Database)
	case "pg":
		dataStore, err = db.NewPostgresStore(logger, LoadedConfig.Database)
	default:
		log.Fatal("Unknown database type")
	}
	if err != nil {
		TopLevelLogger.Fatal("Failed to create datastore", zap.Error(err))
	}
	err = dataStore.EnsureUsable()
	if err != nil {
		TopLevelLogger.Fatal("Datastore is unusable", zap.Error(err))
	}
	return dataStore
}

func bootstrapDispatcher(auditor db.Auditor) *events.Dispatcher {
	dispatcher := events.NewDispatcher(TopLevelLogger.Named("event_dispatcher"))
	//bootstrap listeners
	dbLayer := db.BootstrapListeners(auditor, TopLevelLogger.Named("event_listener"))
	dispatcher.Register(dbLayer...)
	warn := TopLevelLogger.Named("security")
	dispatcher.Register(events.ListenerFunc{
		Event: event.VendorLoginFailedEvent,
		Fn: func(_ context.Context, ev events.Event) error {
			if e, ok := ev.(*event.VendorLoginFailed); ok {
				warn.Warn("velux rejected a registration attempt", sanitize.UserInputString("username", e.VeluxUserID))
			}
			return nil
		},
	})
	return dispatcher
}

// resolveServices is the composite root shared by all commands
func resolveServices(dataStore db.RecordStore) (*tokens.TokenIssuer, *user.Service) {
	dispatcher := bootstrapDispatcher(dataStore.Auditor())
	issuer := tokens.NewIssuer(
		TopLevelLogger.Named("token_issuer"),
		LoadedConfig.Behaviour,
		dataStore,
		dataStore,
		dispatcher,
	)
	client := velux.NewClient(TopLevelLogger.Named("velux_client"), LoadedConfig.Velux)
	userService := user.New(
		dataStore,
		TopLevelLogger.Named("user_service"),
		LoadedConfig.Behaviour,
		client,
		issuer,
		dispatcher,
	)
	return issuer, userService
}
