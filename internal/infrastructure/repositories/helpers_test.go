package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		is_staff BOOLEAN NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createProfileTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE user_profiles (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		phone_number TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		date_of_birth DATETIME,
		linkedin_profile TEXT NOT NULL DEFAULT '',
		github_profile TEXT NOT NULL DEFAULT '',
		profile_photo TEXT,
		nationality TEXT NOT NULL DEFAULT '',
		language TEXT NOT NULL DEFAULT 'english',
		education_level TEXT NOT NULL DEFAULT '',
		institution TEXT NOT NULL DEFAULT '',
		graduation_year INTEGER,
		profession TEXT NOT NULL DEFAULT '',
		profession_type TEXT NOT NULL DEFAULT '',
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createDocumentTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE kyc_documents (
		id TEXT PRIMARY KEY,
		profile_id TEXT NOT NULL REFERENCES user_profiles(id) ON DELETE CASCADE,
		document_file TEXT NOT NULL,
		original_name TEXT NOT NULL DEFAULT '',
		content_type TEXT NOT NULL DEFAULT '',
		size INTEGER NOT NULL DEFAULT 0,
		document_type TEXT NOT NULL DEFAULT 'other',
		document_id TEXT,
		registration_number TEXT,
		uploaded_at DATETIME NOT NULL
	);`)
}

func createKYCTables(t *testing.T, db *gorm.DB) {
	createUserTable(t, db)
	createProfileTable(t, db)
	createDocumentTable(t, db)
}

func seedUser(t *testing.T, db *gorm.DB, username string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	mustExec(t, db,
		"INSERT INTO users(id,username,email,password_hash,created_at,updated_at) VALUES (?,?,?,?,?,?)",
		id.String(), username, username+"@finid.test", "hash", time.Now(), time.Now(),
	)
	return id
}
