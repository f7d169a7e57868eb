package grader

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openFixture(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := CreateDatabase("testdata/rating.sql")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func countRows(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	var count int
	require.NoError(t, db.Get(&count, "SELECT count(*) FROM "+table))
	return count
}

func TestCreateDatabaseFromScript(t *testing.T) {
	db, err := CreateDatabaseFromScript(
		"CREATE TABLE t(a int); INSERT INTO t VALUES(1); INSERT INTO t VALUES(2);")
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 2, countRows(t, db, "t"))
}

func TestCreateDatabaseFromScript_InvalidScript(t *testing.T) {
	_, err := CreateDatabaseFromScript("CREATE TABLE (")
	assert.Error(t, err)
}

func TestCreateDatabase_MissingFile(t *testing.T) {
	_, err := CreateDatabase("testdata/no-such-dataset.sql")
	assert.Error(t, err)
}

func TestCloneDatabase_ContentIdentical(t *testing.T) {
	src := openFixture(t)

	clone, err := CloneDatabase(src)
	require.NoError(t, err)
	defer clone.Close()

	for _, table := range []string{"Movie", "Reviewer", "Rating"} {
		assert.Equal(t, countRows(t, src, table), countRows(t, clone, table), table)
	}

	query := "SELECT mID, title, year, director FROM Movie ORDER BY mID"
	srcRows, err := Execute(src, query, false)
	require.NoError(t, err)
	cloneRows, err := Execute(clone, query, false)
	require.NoError(t, err)
	assert.True(t, CompareRows(srcRows, cloneRows, true))
}

func TestCloneDatabase_MutationsDoNotPropagate(t *testing.T) {
	src := openFixture(t)

	clone, err := CloneDatabase(src)
	require.NoError(t, err)
	defer clone.Close()

	_, err = clone.Exec("DELETE FROM Movie")
	require.NoError(t, err)
	_, err = clone.Exec("DROP TABLE Rating")
	require.NoError(t, err)

	assert.Equal(t, 0, countRows(t, clone, "Movie"))
	assert.Equal(t, 8, countRows(t, src, "Movie"))
	assert.Equal(t, 5, countRows(t, src, "Rating"))

	// a later clone of the same source sees pristine content
	second, err := CloneDatabase(src)
	require.NoError(t, err)
	defer second.Close()
	assert.Equal(t, 8, countRows(t, second, "Movie"))
}

func TestCloneDatabase_PreservesStorageClasses(t *testing.T) {
	src, err := CreateDatabaseFromScript(`
		CREATE TABLE t(a int, b text, c real, d blob, e text);
		INSERT INTO t VALUES(1, 'O''Brien', 1.5, X'010203', NULL);`)
	require.NoError(t, err)
	defer src.Close()

	clone, err := CloneDatabase(src)
	require.NoError(t, err)
	defer clone.Close()

	types, err := Execute(clone, "SELECT typeof(a), typeof(b), typeof(c), typeof(d), typeof(e) FROM t", false)
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.True(t, CompareRows(
		[]Row{{"integer", "text", "real", "blob", "null"}},
		types,
		true,
	))

	srcRows, err := Execute(src, "SELECT * FROM t", false)
	require.NoError(t, err)
	cloneRows, err := Execute(clone, "SELECT * FROM t", false)
	require.NoError(t, err)
	assert.True(t, CompareRows(srcRows, cloneRows, true))
}

func TestCloneDatabase_CarriesTriggersAndIndexes(t *testing.T) {
	// the seed row is inserted before the trigger exists, so its title
	// survives in the source even though it matches the WHEN clause
	src, err := CreateDatabaseFromScript(`
		CREATE TABLE Movie(mID int, title text, year int, director text);
		INSERT INTO Movie VALUES(1, 'Back to the Future', 1985, 'Robert Zemeckis');
		CREATE INDEX movie_year ON Movie(year);
		CREATE TRIGGER label AFTER INSERT ON Movie
		FOR EACH ROW WHEN (new.year > 1980 AND new.year < 1990)
		BEGIN
			UPDATE Movie SET title = '80s movie' WHERE mID = new.mID;
		END;`)
	require.NoError(t, err)
	defer src.Close()

	clone, err := CloneDatabase(src)
	require.NoError(t, err)
	defer clone.Close()

	// copying rows into the clone must not fire the trigger
	rows, err := Execute(clone, "SELECT title FROM Movie WHERE mID = 1", false)
	require.NoError(t, err)
	assert.True(t, CompareRows([]Row{{"Back to the Future"}}, rows, true))

	// but the trigger itself must fire inside the clone
	_, err = clone.Exec("INSERT INTO Movie VALUES(2, 'E.T.', 1982, 'Steven Spielberg')")
	require.NoError(t, err)
	rows, err = Execute(clone, "SELECT title FROM Movie WHERE mID = 2", false)
	require.NoError(t, err)
	assert.True(t, CompareRows([]Row{{"80s movie"}}, rows, true))

	assert.Equal(t, 1, countRows(t, src, "Movie"))
}
