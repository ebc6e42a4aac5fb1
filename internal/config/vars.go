package config

import (
	"github.com/setavenger/ztransparent/internal/zcash"
)

const (
	ConfigFileName       string = "ztransparent.toml"
	DefaultBaseDirectory string = "~/.ztransparent"
)

// storage engines
const (
	EnginePebble  = "pebble"
	EngineLevelDB = "leveldb"
	EngineSQLite  = "sqlite"
)

var (
	LogLevel = "info"

	Network = zcash.Mainnet

	BaseDirectory = ""
	DBPath        = ""
	DBEngine      = EnginePebble

	HTTPHost = "127.0.0.1:8000"

	// CacheSize is the pebble block cache size in bytes
	CacheSize int64 = 512 << 20

	// NoSync skips the WAL sync on commit. A crash can lose the last blocks.
	NoSync = false
)

// one has to call SetDirectories otherwise config.DBPath will be empty
var (
	DBPathPebble  string
	DBPathLevelDB string
	DBPathSQLite  string
)

// SetDirectories resolves BaseDirectory and derives the database paths from it.
func SetDirectories() {
	BaseDirectory = ResolvePath(BaseDirectory)

	DBPath = BaseDirectory + "/data"

	DBPathPebble = DBPath + "/pebble"
	DBPathLevelDB = DBPath + "/leveldb"
	DBPathSQLite = DBPath + "/sqlite"
}

// EngineDBPath is the database directory of the configured engine.
func EngineDBPath() string {
	switch DBEngine {
	case EngineLevelDB:
		return DBPathLevelDB
	case EngineSQLite:
		return DBPathSQLite
	default:
		return DBPathPebble
	}
}
