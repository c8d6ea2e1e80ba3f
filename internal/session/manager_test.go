package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"lingobuddy/internal/llm"
	"lingobuddy/internal/mistakes"
	"lingobuddy/internal/tutor"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func newTestManager(t *testing.T, prov llm.Provider) (*Manager, *mistakes.Store) {
	t.Helper()
	store := mistakes.NewStore(openTestDB(t))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init store: %v", err)
	}
	return NewManager(prov, store, 0), store
}

// startActive walks the session to the active phase with one opening
// line queued on the mock.
func startActive(t *testing.T, mgr *Manager, mock *llm.MockProvider) {
	t.Helper()
	mock.AddReply("¡Hola! ¿Qué te gustaría comprar hoy?")
	if _, err := mgr.Configure("Spanish", "English", tutor.LevelBeginner); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if _, err := mgr.ChooseScene(context.Background(), "You’re at a market buying fruit."); err != nil {
		t.Fatalf("choose scene: %v", err)
	}
}

func correctionReply(reply, mistake, correction, explanation string) string {
	return fmt.Sprintf(`%s
<correction>{"mistake":%q,"correction":%q,"explanation":%q}</correction>`, reply, mistake, correction, explanation)
}

func TestConfigure_RequiresAllFields(t *testing.T) {
	mgr, _ := newTestManager(t, llm.NewMockProvider())

	if _, err := mgr.Configure("", "English", tutor.LevelBeginner); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if _, err := mgr.Configure("Spanish", "  ", tutor.LevelBeginner); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if snap := mgr.Snapshot(); snap.Phase != PhaseNotStarted {
		t.Fatalf("phase = %s, want %s", snap.Phase, PhaseNotStarted)
	}
}

func TestConfigure_MovesToConfiguring(t *testing.T) {
	mgr, _ := newTestManager(t, llm.NewMockProvider())

	snap, err := mgr.Configure("Spanish", "English", tutor.LevelBeginner)
	if err != nil {
		t.Fatalf("configure: %v", err)
	}
	if snap.Phase != PhaseConfiguring {
		t.Fatalf("phase = %s, want %s", snap.Phase, PhaseConfiguring)
	}
	if snap.ID == "" {
		t.Fatal("expected a session id")
	}

	// values can be edited until a scene is chosen
	snap, err = mgr.Configure("French", "English", tutor.LevelIntermediate)
	if err != nil {
		t.Fatalf("reconfigure: %v", err)
	}
	if snap.TargetLang != "French" || snap.Level != tutor.LevelIntermediate {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestChooseScene_ProducesOpeningLine(t *testing.T) {
	mock := llm.NewMockProvider()
	mgr, _ := newTestManager(t, mock)
	startActive(t, mgr, mock)

	snap := mgr.Snapshot()
	if snap.Phase != PhaseActive {
		t.Fatalf("phase = %s, want %s", snap.Phase, PhaseActive)
	}
	if len(snap.Transcript) != 1 {
		t.Fatalf("transcript length = %d, want 1", len(snap.Transcript))
	}
	if snap.Transcript[0].Role != llm.RoleAssistant {
		t.Fatalf("opening turn role = %q", snap.Transcript[0].Role)
	}

	sent := mock.Calls[0]
	if sent[0].Role != llm.RoleSystem {
		t.Fatalf("first provider message role = %q, want system", sent[0].Role)
	}
	if sent[1].Role != llm.RoleUser {
		t.Fatalf("second provider message role = %q, want user", sent[1].Role)
	}
}

func TestChooseScene_BeforeConfigure(t *testing.T) {
	mgr, _ := newTestManager(t, llm.NewMockProvider())
	if _, err := mgr.ChooseScene(context.Background(), "anything"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestChooseScene_ProviderFailureStaysConfigurable(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockReply{Err: &llm.UpstreamError{Kind: llm.KindUnavailable}})
	mgr, _ := newTestManager(t, mock)

	if _, err := mgr.Configure("Spanish", "English", tutor.LevelBeginner); err != nil {
		t.Fatalf("configure: %v", err)
	}
	_, err := mgr.ChooseScene(context.Background(), "You’re at a market buying fruit.")
	var ue *llm.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if snap := mgr.Snapshot(); snap.Phase != PhaseConfiguring {
		t.Fatalf("phase = %s, want %s", snap.Phase, PhaseConfiguring)
	}

	// a retry can succeed
	mock.AddReply("Bonjour!")
	if _, err := mgr.ChooseScene(context.Background(), "You’re at a market buying fruit."); err != nil {
		t.Fatalf("retry choose scene: %v", err)
	}
}

func TestSay_TranscriptGrowsByTwoPerTurn(t *testing.T) {
	mock := llm.NewMockProvider()
	mgr, _ := newTestManager(t, mock)
	startActive(t, mgr, mock)

	for i := 0; i < 3; i++ {
		mock.AddReply(fmt.Sprintf("respuesta %d", i))
		if _, err := mgr.Say(context.Background(), fmt.Sprintf("mensaje %d", i)); err != nil {
			t.Fatalf("say %d: %v", i, err)
		}
		snap := mgr.Snapshot()
		want := 1 + 2*(i+1) // opening line plus one user/assistant pair per turn
		if len(snap.Transcript) != want {
			t.Fatalf("turn %d: transcript length = %d, want %d", i, len(snap.Transcript), want)
		}
	}
}

func TestSay_RecordsDetectedMistake(t *testing.T) {
	mock := llm.NewMockProvider()
	mgr, store := newTestManager(t, mock)
	startActive(t, mgr, mock)

	mock.AddReply(correctionReply(
		"¡Claro! Aquí tienes dos manzanas.",
		"quiero dos manzana",
		"quiero dos manzanas",
		"Plural nouns take an -s.",
	))

	res, err := mgr.Say(context.Background(), "quiero dos manzana")
	if err != nil {
		t.Fatalf("say: %v", err)
	}
	if res.Reply != "¡Claro! Aquí tienes dos manzanas." {
		t.Fatalf("reply = %q", res.Reply)
	}
	if res.Feedback == nil || res.Feedback.Correction != "quiero dos manzanas" {
		t.Fatalf("feedback = %+v", res.Feedback)
	}
	if res.Stored == nil || res.Stored.ID == 0 {
		t.Fatalf("stored = %+v", res.Stored)
	}

	recs, err := store.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 || recs[0].UserInput != "quiero dos manzana" {
		t.Fatalf("unexpected records: %+v", recs)
	}
}

func TestSay_CleanTurnStoresNothing(t *testing.T) {
	mock := llm.NewMockProvider()
	mgr, store := newTestManager(t, mock)
	startActive(t, mgr, mock)

	mock.AddReply("¡Muy bien dicho!")
	res, err := mgr.Say(context.Background(), "Quisiera dos manzanas, por favor.")
	if err != nil {
		t.Fatalf("say: %v", err)
	}
	if res.Feedback != nil || res.Stored != nil {
		t.Fatalf("expected no mistake, got %+v", res)
	}
	if n, _ := store.Count(context.Background()); n != 0 {
		t.Fatalf("store count = %d, want 0", n)
	}
}

func TestSay_EmptyInputIsIgnored(t *testing.T) {
	mock := llm.NewMockProvider()
	mgr, _ := newTestManager(t, mock)
	startActive(t, mgr, mock)
	calls := mock.CallCount()

	for _, in := range []string{"", "   ", "\n\t"} {
		if _, err := mgr.Say(context.Background(), in); !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("Say(%q): expected ErrEmptyMessage, got %v", in, err)
		}
	}

	snap := mgr.Snapshot()
	if len(snap.Transcript) != 1 {
		t.Fatalf("transcript length = %d, want 1", len(snap.Transcript))
	}
	if mock.CallCount() != calls {
		t.Fatal("provider was called for empty input")
	}
}

func TestSay_ExitVariantsEndTheSession(t *testing.T) {
	for _, in := range []string{"exit", "Exit", "  EXIT  "} {
		t.Run(in, func(t *testing.T) {
			mock := llm.NewMockProvider()
			mgr, _ := newTestManager(t, mock)
			startActive(t, mgr, mock)
			calls := mock.CallCount()

			res, err := mgr.Say(context.Background(), in)
			if err != nil {
				t.Fatalf("say: %v", err)
			}
			if res.Review == nil {
				t.Fatal("expected a review")
			}
			if mock.CallCount() != calls {
				t.Fatal("exit token was forwarded to the provider")
			}
			if snap := mgr.Snapshot(); snap.Phase != PhaseReviewing {
				t.Fatalf("phase = %s, want %s", snap.Phase, PhaseReviewing)
			}
		})
	}
}

func TestSay_ExitInsideSentenceIsNormalInput(t *testing.T) {
	mock := llm.NewMockProvider()
	mgr, _ := newTestManager(t, mock)
	startActive(t, mgr, mock)

	mock.AddReply("Vale, salgamos de la tienda.")
	res, err := mgr.Say(context.Background(), "let's exit the store")
	if err != nil {
		t.Fatalf("say: %v", err)
	}
	if res.Review != nil {
		t.Fatal("sentence containing exit ended the session")
	}
	if snap := mgr.Snapshot(); snap.Phase != PhaseActive {
		t.Fatalf("phase = %s, want %s", snap.Phase, PhaseActive)
	}
}

func TestSay_ExitAsFirstMessageYieldsEmptyReview(t *testing.T) {
	mock := llm.NewMockProvider()
	mgr, _ := newTestManager(t, mock)
	startActive(t, mgr, mock)

	res, err := mgr.Say(context.Background(), "exit")
	if err != nil {
		t.Fatalf("say: %v", err)
	}
	if len(res.Review.Records) != 0 {
		t.Fatalf("expected empty review, got %+v", res.Review.Records)
	}
	if res.Review.Focus != "Keep practicing!" {
		t.Fatalf("focus = %q", res.Review.Focus)
	}
}

func TestSay_UpstreamErrorKeepsUserTurn(t *testing.T) {
	mock := llm.NewMockProvider()
	mgr, _ := newTestManager(t, mock)
	startActive(t, mgr, mock)

	mock.AddError(&llm.UpstreamError{Kind: llm.KindTimeout})
	_, err := mgr.Say(context.Background(), "hola")
	var ue *llm.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}

	snap := mgr.Snapshot()
	if snap.Phase != PhaseActive {
		t.Fatalf("phase = %s, want %s", snap.Phase, PhaseActive)
	}
	if len(snap.Transcript) != 2 {
		t.Fatalf("transcript length = %d, want 2", len(snap.Transcript))
	}
	last := snap.Transcript[len(snap.Transcript)-1]
	if last.Role != llm.RoleUser || last.Text != "hola" {
		t.Fatalf("last turn = %+v, want the kept user turn", last)
	}
}

func TestReview_SessionScoped(t *testing.T) {
	mock := llm.NewMockProvider()
	mgr, store := newTestManager(t, mock)

	// a record left over from an earlier session
	if _, err := store.Record(context.Background(), "old input", "old mistake", "old fix"); err != nil {
		t.Fatalf("seed record: %v", err)
	}

	startActive(t, mgr, mock)
	if _, err := mgr.Say(context.Background(), "exit"); err != nil {
		t.Fatalf("exit: %v", err)
	}

	rev, err := mgr.Review()
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if len(rev.Records) != 0 {
		t.Fatalf("review leaked records from other sessions: %+v", rev.Records)
	}
}

func TestReview_FocusAfterThreeMistakes(t *testing.T) {
	mock := llm.NewMockProvider()
	mgr, _ := newTestManager(t, mock)
	startActive(t, mgr, mock)

	for i := 0; i < 3; i++ {
		mock.AddReply(correctionReply("Sigue así.", fmt.Sprintf("err %d", i), fmt.Sprintf("fix %d", i), "because"))
		if _, err := mgr.Say(context.Background(), fmt.Sprintf("frase %d", i)); err != nil {
			t.Fatalf("say %d: %v", i, err)
		}
	}
	res, err := mgr.Say(context.Background(), "exit")
	if err != nil {
		t.Fatalf("exit: %v", err)
	}
	if len(res.Review.Records) != 3 {
		t.Fatalf("review has %d records, want 3", len(res.Review.Records))
	}
	if res.Review.Focus != "Verb conjugation and vocabulary improvement." {
		t.Fatalf("focus = %q", res.Review.Focus)
	}
}

func TestReview_BeforeSessionEnds(t *testing.T) {
	mock := llm.NewMockProvider()
	mgr, _ := newTestManager(t, mock)
	startActive(t, mgr, mock)

	if _, err := mgr.Review(); !errors.Is(err, ErrNotEnded) {
		t.Fatalf("expected ErrNotEnded, got %v", err)
	}
}

func TestSay_AfterSessionEnded(t *testing.T) {
	mock := llm.NewMockProvider()
	mgr, _ := newTestManager(t, mock)
	startActive(t, mgr, mock)

	if _, err := mgr.Say(context.Background(), "exit"); err != nil {
		t.Fatalf("exit: %v", err)
	}

	// a repeated exit is a no-op that shows the review again
	res, err := mgr.Say(context.Background(), "EXIT")
	if err != nil || res.Review == nil {
		t.Fatalf("repeated exit: res=%+v err=%v", res, err)
	}

	if _, err := mgr.Say(context.Background(), "hola"); !errors.Is(err, ErrEnded) {
		t.Fatalf("expected ErrEnded, got %v", err)
	}
}

func TestReset_ClearsSessionButNotStore(t *testing.T) {
	mock := llm.NewMockProvider()
	mgr, store := newTestManager(t, mock)
	startActive(t, mgr, mock)

	mock.AddReply(correctionReply("Vale.", "mal", "bien", "so"))
	if _, err := mgr.Say(context.Background(), "una frase mal"); err != nil {
		t.Fatalf("say: %v", err)
	}

	snap := mgr.Reset()
	if snap.Phase != PhaseNotStarted || len(snap.Transcript) != 0 || snap.ID != "" {
		t.Fatalf("unexpected snapshot after reset: %+v", snap)
	}

	if n, _ := store.Count(context.Background()); n != 1 {
		t.Fatalf("store count = %d, want 1 (reset must not touch the log)", n)
	}

	// a fresh session can start immediately
	mock.AddReply("Hallo!")
	if _, err := mgr.Configure("German", "English", tutor.LevelAdvanced); err != nil {
		t.Fatalf("configure after reset: %v", err)
	}
	if _, err := mgr.ChooseScene(context.Background(), "You’re negotiating a business deal."); err != nil {
		t.Fatalf("choose scene after reset: %v", err)
	}
}

func TestSay_StorageFailureKeepsSessionAlive(t *testing.T) {
	mock := llm.NewMockProvider()
	db := openTestDB(t)
	store := mistakes.NewStore(db)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init store: %v", err)
	}
	mgr := NewManager(mock, store, 0)
	startActive(t, mgr, mock)

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("raw db: %v", err)
	}
	sqlDB.Close()

	mock.AddReply(correctionReply("Casi.", "mal", "bien", "so"))
	res, err := mgr.Say(context.Background(), "una frase mal")
	if err != nil {
		t.Fatalf("say: %v", err)
	}
	if res.Warning == "" {
		t.Fatal("expected a storage warning")
	}
	if res.Stored != nil {
		t.Fatalf("stored = %+v, want nil", res.Stored)
	}
	if res.Feedback == nil {
		t.Fatal("feedback should still be shown")
	}

	// the dropped mistake must not reappear in the review
	exit, err := mgr.Say(context.Background(), "exit")
	if err != nil {
		t.Fatalf("exit: %v", err)
	}
	if len(exit.Review.Records) != 0 {
		t.Fatalf("review contains dropped record: %+v", exit.Review.Records)
	}
}

func TestSay_UnparseableCorrectionMeansNoMistake(t *testing.T) {
	mock := llm.NewMockProvider()
	mgr, store := newTestManager(t, mock)
	startActive(t, mgr, mock)

	mock.AddReply("Bien.\n<correction>{broken json</correction>")
	res, err := mgr.Say(context.Background(), "hola")
	if err != nil {
		t.Fatalf("say: %v", err)
	}
	if res.Reply != "Bien." {
		t.Fatalf("reply = %q, segment not stripped", res.Reply)
	}
	if res.Feedback != nil || res.Stored != nil {
		t.Fatalf("expected no mistake, got %+v", res)
	}
	if n, _ := store.Count(context.Background()); n != 0 {
		t.Fatalf("store count = %d, want 0", n)
	}
}
