package repository

import (
	"cmp"
	"context"
	"database/sql"
	"slices"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite" // driver

	"github.com/okian/cardwatch/internal/domain/model"
	"github.com/okian/cardwatch/internal/domain/scoring"
	"github.com/okian/cardwatch/internal/domain/severity"
	"github.com/okian/cardwatch/pkg/logger"
	"github.com/okian/cardwatch/pkg/metrics"
)

// schema matches the league scraper's database so an existing scrape can be
// opened directly.
const schema = `
CREATE TABLE IF NOT EXISTS divisions (
	id          INTEGER PRIMARY KEY,
	division_id INTEGER UNIQUE,
	name        TEXT,
	type        TEXT,
	level       INTEGER
);

CREATE TABLE IF NOT EXISTS games (
	id          INTEGER PRIMARY KEY,
	game_id     INTEGER UNIQUE,
	division_id INTEGER,
	game_number TEXT,
	game_date   TEXT,
	location    TEXT,
	home_team   TEXT,
	away_team   TEXT,
	scraped_at  TEXT,
	FOREIGN KEY (division_id) REFERENCES divisions(id)
);

CREATE TABLE IF NOT EXISTS misconducts (
	id            INTEGER PRIMARY KEY,
	game_id       INTEGER,
	player_name   TEXT,
	player_number TEXT,
	team          TEXT,
	minute        TEXT,
	reason        TEXT,
	card_type     TEXT,
	FOREIGN KEY (game_id) REFERENCES games(id)
);

CREATE TABLE IF NOT EXISTS suspensions_served (
	id          INTEGER PRIMARY KEY,
	game_id     INTEGER,
	player_name TEXT,
	team        TEXT,
	FOREIGN KEY (game_id) REFERENCES games(id)
);

CREATE TABLE IF NOT EXISTS printable_suspensions (
	id          INTEGER PRIMARY KEY,
	game_id     INTEGER,
	player_name TEXT,
	team        TEXT,
	FOREIGN KEY (game_id) REFERENCES games(id)
);

CREATE INDEX IF NOT EXISTS idx_misconducts_player ON misconducts(player_name);
CREATE INDEX IF NOT EXISTS idx_misconducts_team ON misconducts(team);
CREATE INDEX IF NOT EXISTS idx_misconducts_game ON misconducts(game_id);
`

var cardColumns = []string{
	"m.id",
	"COALESCE(m.player_name, '')",
	"COALESCE(m.team, '')",
	"COALESCE(m.reason, '')",
	"COALESCE(m.card_type, '')",
	"g.id",
	"COALESCE(g.game_date, '')",
	"COALESCE(d.name, '')",
	"COALESCE(d.type, '')",
	"COALESCE(g.scraped_at, '')",
}

// Card types are matched without regard to case. Anything not red counts as
// a yellow, which is also how queryCards reads the column.
var (
	isRed    = sq.Expr("LOWER(COALESCE(m.card_type, '')) = 'red'")
	isYellow = sq.Expr("LOWER(COALESCE(m.card_type, '')) <> 'red'")
)

// notEjected drops yellows from games where the same player was sent off.
var notEjected = sq.Expr(`NOT EXISTS (
	SELECT 1 FROM misconducts m2
	WHERE m2.game_id = m.game_id
	  AND m2.player_name = m.player_name
	  AND LOWER(m2.card_type) = 'red')`)

var weightColumns = severity.Columns{Reason: "m.reason", CardType: "m.card_type", Player: "m.player_name"}

// SQLiteStore reads the scraper's SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	opts options
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens path and applies the schema.
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, unavailable(err, "open db")
	}
	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON", schema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, unavailable(err, "migrate")
		}
	}
	return &SQLiteStore{db: db, opts: newOptions(opts)}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// observe records latency and, on failure, marks err as unavailable unless it
// already carries ErrUndatedGame.
func (s *SQLiteStore) observe(ctx context.Context, op string, start time.Time, err error) error {
	metrics.RecordStoreQueryLatency(op, float64(time.Since(start).Microseconds())/1000)
	if err == nil {
		return nil
	}
	metrics.RecordStoreError(op)
	s.opts.log.Warn(ctx, "store query failed", logger.String("op", op), logger.Error(err))
	if errors.Is(err, ErrUndatedGame) {
		return errors.Wrap(err, op)
	}
	return unavailable(err, op)
}

// gameDate parses a stored game date against the row's scrape time. Failures
// are logged and return ok=false with a zero time.
func (s *SQLiteStore) gameDate(ctx context.Context, gameID int64, date, scraped string) (time.Time, bool) {
	ref, _ := time.Parse(time.RFC3339, scraped)
	t, err := parseDate(date, ref)
	if err != nil {
		s.opts.log.Warn(ctx, "unreadable game date",
			logger.Any("game_id", gameID), logger.String("game_date", date), logger.Error(err))
		return time.Time{}, false
	}
	return t, true
}

func cardQuery() sq.SelectBuilder {
	return sq.Select(cardColumns...).
		From("misconducts m").
		Join("games g ON m.game_id = g.id").
		LeftJoin("divisions d ON g.division_id = d.id").
		OrderBy("g.id ASC", "m.id ASC")
}

func scoped(q sq.SelectBuilder, scope model.Scope) sq.SelectBuilder {
	if scope.Divisional() {
		return q.Where(sq.Eq{"d.name": scope.Division})
	}
	return q
}

// queryCards reads card rows and orders them chronologically. game_date is
// free text, so ordering happens after parsing rather than in SQL. When strict
// is set an unreadable date fails the read with ErrUndatedGame; otherwise the
// card keeps a zero date.
func (s *SQLiteStore) queryCards(ctx context.Context, op string, q sq.SelectBuilder, strict bool) (out []model.CardEvent, err error) {
	defer func(start time.Time) { err = s.observe(ctx, op, start, err) }(time.Now())

	query, args, err := q.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build query")
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, gameID                                                  int64
			player, team, reason, cardType, date, div, divType, scraped string
		)
		if err := rows.Scan(&id, &player, &team, &reason, &cardType, &gameID, &date, &div, &divType, &scraped); err != nil {
			return nil, err
		}
		// Anything not recorded as red is scored as a yellow, as in SQL.
		t := model.Yellow
		if strings.EqualFold(cardType, string(model.Red)) {
			t = model.Red
		}
		played, ok := s.gameDate(ctx, gameID, date, scraped)
		if !ok && strict {
			return nil, errors.Wrapf(ErrUndatedGame, "game %d: %q", gameID, date)
		}
		out = append(out, model.CardEvent{
			ID:           strconv.FormatInt(id, 10),
			Player:       player,
			Team:         team,
			Division:     div,
			DivisionType: divType,
			GameID:       gameID,
			GameDate:     played,
			Type:         t,
			Reason:       reason,
			Category:     severity.Classify(t, reason),
			IsBench:      player == model.BenchPlayer,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, model.Chronological)
	return out, nil
}

// QualifyingYellows implements Store.
func (s *SQLiteStore) QualifyingYellows(ctx context.Context, player string, scope model.Scope) ([]model.CardEvent, error) {
	q := cardQuery().
		Where(sq.Eq{"m.player_name": player}).
		Where(isYellow).
		Where(sq.NotEq{"m.player_name": model.BenchPlayer}).
		Where(notEjected)
	return s.queryCards(ctx, "qualifying_yellows", scoped(q, scope), true)
}

// Reds implements Store.
func (s *SQLiteStore) Reds(ctx context.Context, player string, scope model.Scope) ([]model.CardEvent, error) {
	q := cardQuery().
		Where(sq.Eq{"m.player_name": player}).
		Where(isRed).
		Where(sq.NotEq{"m.player_name": model.BenchPlayer})
	return s.queryCards(ctx, "reds", scoped(q, scope), true)
}

// ServedSuspensions implements Store.
func (s *SQLiteStore) ServedSuspensions(ctx context.Context, player string, scope model.Scope) ([]model.SuspensionRecord, error) {
	return s.records(ctx, "suspensions_served", model.Served, player, scope)
}

// PrintableSuspensions implements Store.
func (s *SQLiteStore) PrintableSuspensions(ctx context.Context, player string, scope model.Scope) ([]model.SuspensionRecord, error) {
	return s.records(ctx, "printable_suspensions", model.Printable, player, scope)
}

func (s *SQLiteStore) records(ctx context.Context, table string, kind model.SuspensionKind, player string, scope model.Scope) (out []model.SuspensionRecord, err error) {
	defer func(start time.Time) { err = s.observe(ctx, table, start, err) }(time.Now())

	q := sq.Select("s.id", "COALESCE(s.player_name, '')", "COALESCE(s.team, '')", "g.id",
		"COALESCE(g.game_date, '')", "COALESCE(d.name, '')", "COALESCE(g.scraped_at, '')").
		From(table+" s").
		Join("games g ON s.game_id = g.id").
		LeftJoin("divisions d ON g.division_id = d.id").
		Where(sq.Eq{"s.player_name": player}).
		OrderBy("g.id ASC", "s.id ASC")
	query, args, err := scoped(q, scope).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build query")
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, gameID                     int64
			name, team, date, div, scraped string
		)
		if err := rows.Scan(&id, &name, &team, &gameID, &date, &div, &scraped); err != nil {
			return nil, err
		}
		played, _ := s.gameDate(ctx, gameID, date, scraped)
		out = append(out, model.SuspensionRecord{
			ID:       strconv.FormatInt(id, 10),
			Player:   name,
			Team:     team,
			Division: div,
			GameID:   gameID,
			GameDate: played,
			Kind:     kind,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b model.SuspensionRecord) int {
		if c := a.GameDate.Compare(b.GameDate); c != 0 {
			return c
		}
		return cmp.Compare(a.GameID, b.GameID)
	})
	return out, nil
}

func filtered(q sq.SelectBuilder, f model.Filter) sq.SelectBuilder {
	if f.Division != "" {
		q = q.Where(sq.Eq{"d.name": f.Division})
	}
	if f.DivisionType != "" {
		q = q.Where(sq.Eq{"d.type": f.DivisionType})
	}
	if f.Team != "" {
		q = q.Where(sq.Like{"LOWER(m.team)": "%" + strings.ToLower(f.Team) + "%"})
	}
	return q
}

// CardSet implements Store.
func (s *SQLiteStore) CardSet(ctx context.Context, subject model.Subject, f model.Filter) ([]model.CardEvent, error) {
	q := cardQuery()
	if subject.Player != "" {
		q = q.Where(sq.Eq{"m.player_name": subject.Player})
	}
	if subject.Team != "" {
		q = q.Where(sq.Eq{"m.team": subject.Team})
	}
	return s.queryCards(ctx, "card_set", filtered(q, f), false)
}

// GamesPlayed implements Store.
func (s *SQLiteStore) GamesPlayed(ctx context.Context, team, division string) (n int, err error) {
	defer func(start time.Time) { err = s.observe(ctx, "games_played", start, err) }(time.Now())

	q := sq.Select("COUNT(*)").
		From("games g").
		LeftJoin("divisions d ON g.division_id = d.id").
		Where(sq.Or{sq.Eq{"g.home_team": team}, sq.Eq{"g.away_team": team}})
	if division != "" {
		q = q.Where(sq.Eq{"d.name": division})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "build query")
	}
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

// TeamWeights implements Store. The per-row weight is the generated CASE
// expression from the severity table, so totals match in-process scoring.
func (s *SQLiteStore) TeamWeights(ctx context.Context, f model.Filter) (out []scoring.TeamWeight, err error) {
	defer func(start time.Time) { err = s.observe(ctx, "team_weights", start, err) }(time.Now())

	sum, sumArgs, err := severity.SQLWeightSum(weightColumns)
	if err != nil {
		return nil, err
	}
	gp := `(SELECT COUNT(*) FROM games g2
		LEFT JOIN divisions d2 ON g2.division_id = d2.id
		WHERE (g2.home_team = m.team OR g2.away_team = m.team)`
	var gpArgs []any
	if f.Division != "" {
		gp += " AND d2.name = ?"
		gpArgs = append(gpArgs, f.Division)
	}
	gp += ")"

	q := sq.Select("COALESCE(m.team, '')").
		Column(sum+" AS weight", sumArgs...).
		Column(gp+" AS gp", gpArgs...).
		From("misconducts m").
		Join("games g ON m.game_id = g.id").
		LeftJoin("divisions d ON g.division_id = d.id").
		GroupBy("m.team").
		OrderBy("m.team ASC")
	query, args, err := filtered(q, f).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build query")
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var tw scoring.TeamWeight
		if err := rows.Scan(&tw.Team, &tw.Weight, &tw.GamesPlayed); err != nil {
			return nil, err
		}
		out = append(out, tw)
	}
	return out, rows.Err()
}

// Stats implements Store.
func (s *SQLiteStore) Stats(ctx context.Context) (st Stats, err error) {
	defer func(start time.Time) { err = s.observe(ctx, "stats", start, err) }(time.Now())

	counts := []struct {
		dst   *int
		query string
	}{
		{&st.Divisions, "SELECT COUNT(*) FROM divisions"},
		{&st.Games, "SELECT COUNT(*) FROM games"},
		{&st.Cards, "SELECT COUNT(*) FROM misconducts"},
		{&st.Players, "SELECT COUNT(DISTINCT player_name) FROM misconducts WHERE player_name != ?"},
		{&st.Teams, "SELECT COUNT(DISTINCT team) FROM misconducts"},
		{&st.Served, "SELECT COUNT(*) FROM suspensions_served"},
		{&st.Printable, "SELECT COUNT(*) FROM printable_suspensions"},
	}
	for _, c := range counts {
		var args []any
		if strings.Contains(c.query, "?") {
			args = append(args, model.BenchPlayer)
		}
		if err := s.db.QueryRowContext(ctx, c.query, args...).Scan(c.dst); err != nil {
			return Stats{}, err
		}
	}
	return st, nil
}

// Seed writes a fixture in one transaction. Fixture game ids become both the
// row id and the league game id.
func (s *SQLiteStore) Seed(ctx context.Context, fx *Fixture) error {
	if err := fx.validate(); err != nil {
		return err
	}
	return s.seed(ctx, fx)
}

func (s *SQLiteStore) seed(ctx context.Context, fx *Fixture) (err error) {
	defer func(start time.Time) { err = s.observe(ctx, "seed", start, err) }(time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	exec := func(b sq.InsertBuilder) (sql.Result, error) {
		query, args, err := b.ToSql()
		if err != nil {
			return nil, errors.Wrap(err, "build insert")
		}
		return tx.ExecContext(ctx, query, args...)
	}

	divisionIDs := make(map[string]int64, len(fx.Divisions))
	for _, d := range fx.Divisions {
		res, err := exec(sq.Insert("divisions").Columns("name", "type", "level").Values(d.Name, d.Type, d.Level))
		if err != nil {
			return errors.Wrapf(err, "insert division %q", d.Name)
		}
		if divisionIDs[d.Name], err = res.LastInsertId(); err != nil {
			return err
		}
	}
	scraped := time.Now().UTC().Format(time.RFC3339)
	for _, g := range fx.Games {
		_, err := exec(sq.Insert("games").
			Columns("id", "game_id", "division_id", "game_number", "game_date", "location", "home_team", "away_team", "scraped_at").
			Values(g.ID, g.ID, divisionIDs[g.Division], g.Number, g.Date, g.Location, g.Home, g.Away, scraped))
		if err != nil {
			return errors.Wrapf(err, "insert game %d", g.ID)
		}
	}
	for i, c := range fx.Cards {
		t, _ := parseCardType(c.Type)
		_, err := exec(sq.Insert("misconducts").
			Columns("game_id", "player_name", "player_number", "team", "minute", "reason", "card_type").
			Values(c.Game, c.Player, c.Number, c.Team, c.Minute, c.Reason, string(t)))
		if err != nil {
			return errors.Wrapf(err, "insert card %d", i)
		}
	}
	for i, r := range fx.Suspensions {
		kind, _ := parseKind(r.Kind)
		table := "suspensions_served"
		if kind == model.Printable {
			table = "printable_suspensions"
		}
		_, err := exec(sq.Insert(table).Columns("game_id", "player_name", "team").Values(r.Game, r.Player, r.Team))
		if err != nil {
			return errors.Wrapf(err, "insert suspension %d", i)
		}
	}
	return tx.Commit()
}
