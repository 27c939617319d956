package version

import "fmt"

// Заполняются через -ldflags "-X github.com/vladislavdragonenkov/coffeeshop/internal/version.version=...".
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info возвращает версию, коммит и дату сборки.
func Info() (v, c, d string) { return version, commit, date }

func GetVersion() string { return version }

func GetCommit() string { return commit }

func GetDate() string { return date }

// String печатает сведения о сборке одной строкой для баннера и логов.
func String() string {
	return fmt.Sprintf("coffeeshop %s (commit %s, built %s)", version, commit, date)
}
