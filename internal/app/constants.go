package app

const (
	Name                  = "netwatch"
	ConfigFilename        = "config.json"
	DBFilename            = "history.db"
	LogFilename           = "app.log"
	RecentTransitionsLoad = 20
)
