package sqlite

var tables = map[string]string{
	"artifact": `CREATE TABLE IF NOT EXISTS artifact(
id INTEGER PRIMARY KEY AUTOINCREMENT,
iso_name TEXT NOT NULL UNIQUE,
base_name TEXT NOT NULL,
flavor TEXT NOT NULL,
source_size INTEGER NOT NULL,
source_modified TIMESTAMP NOT NULL,
kernel_sha256 TEXT NOT NULL,
initrd_sha256 TEXT NOT NULL,
extracted_at TIMESTAMP NOT NULL,
run_id TEXT NOT NULL
)`,
}
