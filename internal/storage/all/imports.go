// Package all registers every built-in storage backend. Import it for side
// effects:
//
//	import _ "referralreport/internal/storage/all"
//
// after which storage.New accepts "sqlite", "postgres", "mssql" and "mysql".
package all

import (
	_ "referralreport/internal/storage/mssql"
	_ "referralreport/internal/storage/mysql"
	_ "referralreport/internal/storage/postgres"
	_ "referralreport/internal/storage/sqlite"
)
