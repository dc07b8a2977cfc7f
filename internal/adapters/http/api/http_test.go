package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/cockroachdb/errors"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/cardwatch/internal/adapters/http/api"
	"github.com/okian/cardwatch/internal/adapters/repository"
	service "github.com/okian/cardwatch/internal/app"
	"github.com/okian/cardwatch/internal/domain/compliance"
	"github.com/okian/cardwatch/internal/domain/model"
	"github.com/okian/cardwatch/internal/domain/rules"
	"github.com/okian/cardwatch/internal/domain/scoring"
	"github.com/okian/cardwatch/internal/domain/types"
)

const fixture = "../../repository/testdata/league.yaml"

func newMux(t *testing.T) (*http.ServeMux, *repository.MemoryStore) {
	t.Helper()
	store, err := repository.NewMemoryStoreFromFile(fixture)
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	mux := http.NewServeMux()
	api.NewServer(service.New(store)).Register(mux)
	return mux, store
}

func get(mux http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	_ = json.NewDecoder(w.Body).Decode(&v)
	return v
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func TestServer_Register(t *testing.T) {
	Convey("Given a server over the league fixture", t, func() {
		mux, _ := newMux(t)

		Convey("Then health serves metrics", func() {
			w := get(mux, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then stats are JSON", func() {
			w := get(mux, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
			st := decode[repository.Stats](w)
			So(st.Cards, ShouldEqual, 17)
		})

		Convey("Then unknown paths are not found", func() {
			So(get(mux, "/unknown").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then other methods are refused", func() {
			req := httptest.NewRequest(http.MethodPost, "/stats", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestPlayerHandler(t *testing.T) {
	Convey("Given a server over the league fixture", t, func() {
		mux, _ := newMux(t)

		Convey("When asking for a player's compliance", func() {
			w := get(mux, "/players/Alex%20Moreno/compliance")
			rep := decode[compliance.Report](w)

			Convey("Then the combined report is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(rep.Player, ShouldEqual, "Alex Moreno")
				So(rep.Mode, ShouldEqual, model.Combined)
				So(rep.ExpectedCount, ShouldEqual, 2)
				So(rep.UnservedCount, ShouldEqual, 1)
				So(rep.Pending, ShouldBeTrue)
			})
		})

		Convey("When asking per division", func() {
			q := url.Values{"mode": {"per_division"}, "division": {"Men's Premier"}}
			w := get(mux, "/players/Alex%20Moreno/compliance?"+q.Encode())
			rep := decode[compliance.Report](w)

			Convey("Then only that division is counted", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(rep.QualifyingYellows, ShouldEqual, 3)
				So(rep.FullyCompliant, ShouldBeTrue)
			})
		})

		Convey("When the mode is unknown", func() {
			w := get(mux, "/players/Alex%20Moreno/compliance?mode=weekly")

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode[errorBody](w).Code, ShouldEqual, "bad_request")
			})
		})

		Convey("When asking for a player's score", func() {
			w := get(mux, "/players/Jordan%20Lee/score")
			sc := decode[scoring.Score](w)

			Convey("Then the raw weight is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(sc.Score, ShouldEqual, 14.0)
				So(sc.Tier, ShouldEqual, scoring.HighRisk)
			})
		})

		Convey("When asking about an unknown player", func() {
			w := get(mux, "/players/Nobody/score")

			Convey("Then an empty score is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[scoring.Score](w).Score, ShouldEqual, 0)
			})
		})
	})
}

func TestTeamHandler(t *testing.T) {
	Convey("Given a server over the league fixture", t, func() {
		mux, _ := newMux(t)

		Convey("When scoring a team within a division", func() {
			q := url.Values{"division": {"Men's Premier"}}
			w := get(mux, "/teams/Eastside%20FC/score?"+q.Encode())
			sc := decode[types.TeamScore](w)

			Convey("Then the division comparison is included", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(sc.Score.Score, ShouldEqual, 8.17)
				So(*sc.DivisionAverage, ShouldEqual, 4.61)
				So(*sc.VsDivisionAverage, ShouldEqual, 3.56)
			})
		})
	})
}

func TestRankingHandler(t *testing.T) {
	Convey("Given a server over the league fixture", t, func() {
		mux, _ := newMux(t)

		Convey("When ranking players with filters", func() {
			w := get(mux, "/rankings/players?min_yellows=2&limit=1")
			rows := decode[[]types.PlayerRow](w)

			Convey("Then the filtered top row is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(rows, ShouldHaveLength, 1)
				So(rows[0].Player, ShouldEqual, "Jordan Lee")
				So(rows[0].Rank, ShouldEqual, 1)
			})
		})

		Convey("When ranking teams by division type", func() {
			w := get(mux, "/rankings/teams?division_type=coed")
			rows := decode[[]types.TeamRow](w)

			Convey("Then only coed cards count", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(rows, ShouldHaveLength, 2)
				So(rows[0].Team, ShouldEqual, "Riverside Rovers")
			})
		})

		Convey("When a filter is malformed", func() {
			Convey("Then it is a bad request", func() {
				So(get(mux, "/rankings/players?min_yellows=many").Code, ShouldEqual, http.StatusBadRequest)
				So(get(mux, "/rankings/teams?limit=-1").Code, ShouldEqual, http.StatusBadRequest)
				So(get(mux, "/rankings/teams?min_yellows=3&max_yellows=1").Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestStatusHandler(t *testing.T) {
	Convey("Given a server", t, func() {
		mux, _ := newMux(t)

		Convey("When classifying seven yellows", func() {
			w := get(mux, "/status?yellows=7")
			body := decode[map[string]any](w)

			Convey("Then the third threshold is reported", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(body["yellows"], ShouldEqual, 7.0)
				So(body["tier"], ShouldEqual, string(rules.TierTriggered73))
				So(body["next_threshold_delta"], ShouldEqual, 1.0)
			})
		})

		Convey("When the count is missing, malformed or negative", func() {
			Convey("Then it is a bad request", func() {
				So(get(mux, "/status").Code, ShouldEqual, http.StatusBadRequest)
				So(get(mux, "/status?yellows=x").Code, ShouldEqual, http.StatusBadRequest)
				So(get(mux, "/status?yellows=-2").Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

// failingDeps returns err from every read.
type failingDeps struct{ err error }

func (f failingDeps) EvaluateCompliance(context.Context, string, model.Scope) (compliance.Report, error) {
	return compliance.Report{}, f.err
}

func (f failingDeps) ScorePlayer(context.Context, string) (scoring.Score, error) {
	return scoring.Score{}, f.err
}

func (f failingDeps) ScoreTeam(context.Context, string, string) (types.TeamScore, error) {
	return types.TeamScore{}, f.err
}

func (f failingDeps) RankPlayersByDanger(context.Context, model.Filter, int) ([]types.PlayerRow, error) {
	return nil, f.err
}

func (f failingDeps) RankTeamsByDiscipline(context.Context, model.Filter, int) ([]types.TeamRow, error) {
	return nil, f.err
}

func (f failingDeps) ClassifyYellowCount(int) (rules.Status, error) { return rules.Status{}, f.err }

func (f failingDeps) Stats(context.Context) (repository.Stats, error) {
	return repository.Stats{}, f.err
}

func TestErrorMapping(t *testing.T) {
	Convey("Given dependencies that fail", t, func() {
		Convey("When the store is unavailable", func() {
			mux := http.NewServeMux()
			api.NewServer(failingDeps{err: errors.Mark(errors.New("disk gone"), repository.ErrStoreUnavailable)}).Register(mux)

			Convey("Then every data endpoint answers 503", func() {
				for _, target := range []string{
					"/stats", "/players/a/compliance", "/players/a/score",
					"/teams/a/score", "/rankings/players", "/rankings/teams",
				} {
					w := get(mux, target)
					So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
					So(decode[errorBody](w).Code, ShouldEqual, "store_unavailable")
				}
			})
		})

		Convey("When a stored game date cannot be read", func() {
			mux := http.NewServeMux()
			api.NewServer(failingDeps{err: errors.Wrap(repository.ErrUndatedGame, "game 8")}).Register(mux)

			Convey("Then compliance answers 422", func() {
				w := get(mux, "/players/a/compliance")
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(decode[errorBody](w).Code, ShouldEqual, "undated_game")
			})
		})

		Convey("When the failure is unexpected", func() {
			mux := http.NewServeMux()
			api.NewServer(failingDeps{err: errors.New("boom")}).Register(mux)

			Convey("Then it answers 500 without leaking the cause", func() {
				w := get(mux, "/players/a/score")
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decode[errorBody](w).Message, ShouldEqual, http.StatusText(http.StatusInternalServerError))
			})
		})
	})
}
