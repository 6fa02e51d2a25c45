package config

const (
	defaultDataDir             = "~/.local/share/rowsweep"
	defaultLogDir              = "~/.local/share/rowsweep/logs"
	defaultLockFile            = "~/.local/share/rowsweep/rowsweep.lock"
	defaultEditLog             = "~/.local/share/rowsweep/edits.log"
	defaultStoreBackend        = "sqlite"
	defaultSourceTab           = "Roster"
	defaultArchiveTab          = "Archive"
	defaultRelocationsTab      = "Relocations"
	defaultKeyHeader           = "Member ID"
	defaultStatusHeader        = "Status"
	defaultTypeHeader          = "Type"
	defaultReviewHeader        = "Review"
	defaultPaymentHeaderPrefix = "Payments"
	defaultMovedOnHeader       = "Moved On"
	defaultTargetStatus        = "dropped"
	defaultRelocationType      = "relo app"
	defaultChunkSize           = 25
	defaultPassBudgetSeconds   = 240
	defaultMaxPasses           = 5
	defaultEditWindowSeconds   = 120
	defaultEditsTTLHours       = 48
	defaultNotesCap            = 50
	defaultLockWaitSeconds     = 10
	defaultLockPollMillis      = 250
	defaultNotifyTimeout       = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
			LockFile: defaultLockFile,
			EditLog:  defaultEditLog,
		},
		Store: Store{
			Backend: defaultStoreBackend,
		},
		Sheet: Sheet{
			SourceTab:           defaultSourceTab,
			ArchiveTab:          defaultArchiveTab,
			RelocationsTab:      defaultRelocationsTab,
			KeyHeader:           defaultKeyHeader,
			StatusHeader:        defaultStatusHeader,
			TypeHeader:          defaultTypeHeader,
			ReviewHeader:        defaultReviewHeader,
			PaymentHeaderPrefix: defaultPaymentHeaderPrefix,
			MovedOnHeader:       defaultMovedOnHeader,
		},
		Rules: Rules{
			TargetStatus:   defaultTargetStatus,
			RelocationType: defaultRelocationType,
		},
		Cleanup: Cleanup{
			ChunkSize:         defaultChunkSize,
			PassBudgetSeconds: defaultPassBudgetSeconds,
			MaxPasses:         defaultMaxPasses,
			EditWindowSeconds: defaultEditWindowSeconds,
			EditsTTLHours:     defaultEditsTTLHours,
			NotesCap:          defaultNotesCap,
		},
		Lock: Lock{
			WaitSeconds: defaultLockWaitSeconds,
			PollMillis:  defaultLockPollMillis,
		},
		Notify: Notify{
			RequestTimeoutSeconds: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
