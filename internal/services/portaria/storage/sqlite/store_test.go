package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/diariourbano/portaria/internal/platform/timeouts"
	"github.com/diariourbano/portaria/internal/services/portaria/domain"
	"github.com/diariourbano/portaria/internal/services/portaria/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenAppliesConnectionPragmas(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)

	var busyMillis int64
	if err := store.sqlDB.QueryRow("PRAGMA busy_timeout").Scan(&busyMillis); err != nil {
		t.Fatalf("read busy_timeout: %v", err)
	}
	if want := timeouts.NumberAllocation.Milliseconds(); busyMillis != want {
		t.Fatalf("busy_timeout = %d, want %d", busyMillis, want)
	}

	var journalMode string
	if err := store.sqlDB.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Fatalf("journal_mode = %q, want %q", journalMode, "wal")
	}

	var synchronous int
	if err := store.sqlDB.QueryRow("PRAGMA synchronous").Scan(&synchronous); err != nil {
		t.Fatalf("read synchronous: %v", err)
	}
	if synchronous != 1 {
		t.Fatalf("synchronous = %d, want 1 (NORMAL)", synchronous)
	}

	var foreignKeys int
	if err := store.sqlDB.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys); err != nil {
		t.Fatalf("read foreign_keys: %v", err)
	}
	if foreignKeys != 1 {
		t.Fatalf("foreign_keys = %d, want 1", foreignKeys)
	}
}

func TestCreateGetOrdinanceRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ordinance := draftOrdinance("ord-1", time.Date(2026, time.March, 12, 10, 0, 0, 0, time.UTC))
	if err := store.CreateOrdinance(context.Background(), ordinance, creationEvent()); err != nil {
		t.Fatalf("create ordinance: %v", err)
	}

	got, err := store.GetOrdinance(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("get ordinance: %v", err)
	}
	if got.Title != ordinance.Title {
		t.Fatalf("title = %q, want %q", got.Title, ordinance.Title)
	}
	if got.Status != domain.StatusDraft {
		t.Fatalf("status = %s, want %s", got.Status, domain.StatusDraft)
	}
	if got.AuthorID != ordinance.AuthorID {
		t.Fatalf("author = %q, want %q", got.AuthorID, ordinance.AuthorID)
	}
	if !got.CreatedAt.Equal(ordinance.CreatedAt) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, ordinance.CreatedAt)
	}
}

func TestGetOrdinanceNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.GetOrdinance(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestListOrdinancesFiltersAndPages(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	base := time.Date(2026, time.March, 12, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		ordinance := draftOrdinance(fmt.Sprintf("ord-%d", i), base.Add(time.Duration(i)*time.Second))
		if err := store.CreateOrdinance(context.Background(), ordinance, creationEvent()); err != nil {
			t.Fatalf("create ordinance %d: %v", i, err)
		}
	}

	page, err := store.ListOrdinances(context.Background(), storage.ListQuery{PageSize: 2})
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("first page length = %d, want 2", len(page))
	}
	if page[0].ID != "ord-0" || page[1].ID != "ord-1" {
		t.Fatalf("first page = %s,%s, want ord-0,ord-1", page[0].ID, page[1].ID)
	}

	rest, err := store.ListOrdinances(context.Background(), storage.ListQuery{PageSize: 10, AfterID: page[1].ID})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(rest) != 3 {
		t.Fatalf("second page length = %d, want 3", len(rest))
	}
	if rest[0].ID != "ord-2" {
		t.Fatalf("second page starts at %s, want ord-2", rest[0].ID)
	}

	drafts, err := store.ListOrdinances(context.Background(), storage.ListQuery{Status: domain.StatusDraft})
	if err != nil {
		t.Fatalf("list drafts: %v", err)
	}
	if len(drafts) != 5 {
		t.Fatalf("drafts length = %d, want 5", len(drafts))
	}
	published, err := store.ListOrdinances(context.Background(), storage.ListQuery{Status: domain.StatusPublished})
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if len(published) != 0 {
		t.Fatalf("published length = %d, want 0", len(published))
	}
}

func TestUpdateDraftOnlyWhileEditable(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	createDraft(t, store, "ord-1")

	updated, err := store.UpdateDraft(context.Background(), "ord-1", "Novo título", "doc://v2", event(domain.EventDraftUpdated))
	if err != nil {
		t.Fatalf("update draft: %v", err)
	}
	if updated.Title != "Novo título" || updated.ContentRef != "doc://v2" {
		t.Fatalf("updated = %q/%q, want new title and content", updated.Title, updated.ContentRef)
	}

	if _, err := store.SubmitForReview(context.Background(), "ord-1", event(domain.EventSubmitted)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	_, err = store.UpdateDraft(context.Background(), "ord-1", "Outro título", "doc://v3", event(domain.EventDraftUpdated))
	if !errors.Is(err, storage.ErrStateConflict) {
		t.Fatalf("update after submit error = %v, want %v", err, storage.ErrStateConflict)
	}
}

func TestSubmitClearsRejectionReason(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	createDraft(t, store, "ord-1")
	advanceToAssigned(t, store, "ord-1", "user-reviewer")

	rejected, err := store.RejectReview(context.Background(), "ord-1", "user-reviewer", "faltou CPF", event(domain.EventReviewRejected))
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != domain.StatusNeedsCorrection {
		t.Fatalf("status = %s, want %s", rejected.Status, domain.StatusNeedsCorrection)
	}
	if rejected.RejectionReason != "faltou CPF" {
		t.Fatalf("rejection reason = %q, want %q", rejected.RejectionReason, "faltou CPF")
	}
	if rejected.ContentRef != "" {
		t.Fatalf("content ref = %q, want cleared after rejection", rejected.ContentRef)
	}

	if _, err := store.UpdateDraft(context.Background(), "ord-1", "Nomeação", "doc://v2", event(domain.EventDraftUpdated)); err != nil {
		t.Fatalf("update after rejection: %v", err)
	}
	resubmitted, err := store.SubmitForReview(context.Background(), "ord-1", event(domain.EventSubmitted))
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if resubmitted.RejectionReason != "" {
		t.Fatalf("rejection reason = %q, want cleared on resubmit", resubmitted.RejectionReason)
	}
	if resubmitted.Status != domain.StatusReviewOpen {
		t.Fatalf("status = %s, want %s", resubmitted.Status, domain.StatusReviewOpen)
	}
}

func TestClaimReviewDistinguishesConflicts(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	createDraft(t, store, "ord-1")

	_, err := store.ClaimReview(context.Background(), "ord-1", "user-reviewer", event(domain.EventReviewClaimed))
	if !errors.Is(err, storage.ErrStateConflict) {
		t.Fatalf("claim before submit error = %v, want %v", err, storage.ErrStateConflict)
	}

	if _, err := store.SubmitForReview(context.Background(), "ord-1", event(domain.EventSubmitted)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := store.ClaimReview(context.Background(), "ord-1", "user-reviewer", event(domain.EventReviewClaimed)); err != nil {
		t.Fatalf("claim: %v", err)
	}
	_, err = store.ClaimReview(context.Background(), "ord-1", "user-other", event(domain.EventReviewClaimed))
	if !errors.Is(err, storage.ErrAlreadyClaimed) {
		t.Fatalf("second claim error = %v, want %v", err, storage.ErrAlreadyClaimed)
	}
}

func TestConcurrentClaimExactlyOneWins(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	createDraft(t, store, "ord-1")
	if _, err := store.SubmitForReview(context.Background(), "ord-1", event(domain.EventSubmitted)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	const claimers = 8
	var wg sync.WaitGroup
	errs := make([]error, claimers)
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			reviewer := fmt.Sprintf("user-reviewer-%d", n)
			_, errs[n] = store.ClaimReview(context.Background(), "ord-1", reviewer, event(domain.EventReviewClaimed))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, storage.ErrAlreadyClaimed):
		default:
			t.Fatalf("unexpected claim error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}

	got, err := store.GetOrdinance(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("get ordinance: %v", err)
	}
	if got.Status != domain.StatusReviewAssigned {
		t.Fatalf("status = %s, want %s", got.Status, domain.StatusReviewAssigned)
	}
	if got.ReviewerID == "" {
		t.Fatal("reviewer id should be set after claim")
	}
}

func TestApproveRequiresAssignedReviewer(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	createDraft(t, store, "ord-1")
	advanceToAssigned(t, store, "ord-1", "user-reviewer")

	_, err := store.ApproveReview(context.Background(), "ord-1", "user-other", event(domain.EventReviewApproved))
	if !errors.Is(err, storage.ErrReviewerMismatch) {
		t.Fatalf("approve by other error = %v, want %v", err, storage.ErrReviewerMismatch)
	}

	approved, err := store.ApproveReview(context.Background(), "ord-1", "user-reviewer", event(domain.EventReviewApproved))
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != domain.StatusApprovedPendingSignature {
		t.Fatalf("status = %s, want %s", approved.Status, domain.StatusApprovedPendingSignature)
	}
	if approved.ReviewerID != "" {
		t.Fatalf("reviewer id = %q, want cleared after approval", approved.ReviewerID)
	}
}

func TestRecordSignatureWritesHashOnce(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	createDraft(t, store, "ord-1")
	advanceToApproved(t, store, "ord-1", "user-reviewer")

	record := storage.SignatureRecord{
		SignerID:      "user-signer",
		Mode:          domain.SignatureDigital,
		ContentRef:    "doc://v1",
		IntegrityHash: "ABCD1234",
	}
	signed, err := store.RecordSignature(context.Background(), "ord-1", record, event(domain.EventSigned))
	if err != nil {
		t.Fatalf("record signature: %v", err)
	}
	if signed.Status != domain.StatusSignedPendingPublication {
		t.Fatalf("status = %s, want %s", signed.Status, domain.StatusSignedPendingPublication)
	}
	if signed.IntegrityHash != "ABCD1234" {
		t.Fatalf("integrity hash = %q, want %q", signed.IntegrityHash, "ABCD1234")
	}
	if signed.SignatureStatus != domain.SignatureDigital {
		t.Fatalf("signature status = %s, want %s", signed.SignatureStatus, domain.SignatureDigital)
	}

	_, err = store.RecordSignature(context.Background(), "ord-1", record, event(domain.EventSigned))
	if !errors.Is(err, storage.ErrStateConflict) {
		t.Fatalf("second signature error = %v, want %v", err, storage.ErrStateConflict)
	}
}

func TestPublishAllocatesFirstNumber(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	createDraft(t, store, "ord-1")
	advanceToSigned(t, store, "ord-1", "user-reviewer", "user-signer")

	result, err := store.PublishWithNumber(context.Background(), "ord-1", "user-approver", "10.0.0.1")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !result.Allocated {
		t.Fatal("first publish should allocate")
	}
	if result.Ordinance.OfficialNumber != "PORT-0001/CITY" {
		t.Fatalf("official number = %q, want %q", result.Ordinance.OfficialNumber, "PORT-0001/CITY")
	}
	if result.Ordinance.Status != domain.StatusPublished {
		t.Fatalf("status = %s, want %s", result.Ordinance.Status, domain.StatusPublished)
	}

	book, err := store.ActiveBook(context.Background())
	if err != nil {
		t.Fatalf("active book: %v", err)
	}
	if book.NextNumber != 2 {
		t.Fatalf("next number = %d, want 2", book.NextNumber)
	}

	entries, err := store.ListAllocations(context.Background(), book.ID)
	if err != nil {
		t.Fatalf("list allocations: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("allocation count = %d, want 1", len(entries))
	}
	entry := entries[0]
	if entry.FormattedNumber != "PORT-0001/CITY" || entry.PaddedNumber != "0001" || entry.RawNumber != 1 {
		t.Fatalf("allocation = %q/%q/%d, want PORT-0001/CITY/0001/1", entry.FormattedNumber, entry.PaddedNumber, entry.RawNumber)
	}
	if entry.OrdinanceID != "ord-1" || entry.ApproverID != "user-approver" || entry.OriginIP != "10.0.0.1" {
		t.Fatalf("allocation provenance = %q/%q/%q, want ord-1/user-approver/10.0.0.1", entry.OrdinanceID, entry.ApproverID, entry.OriginIP)
	}
}

func TestPublishStateConflictBeforeSignature(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	createDraft(t, store, "ord-1")

	_, err := store.PublishWithNumber(context.Background(), "ord-1", "user-approver", "")
	if !errors.Is(err, storage.ErrStateConflict) {
		t.Fatalf("publish from draft error = %v, want %v", err, storage.ErrStateConflict)
	}
}

func TestPublishNumberedOrdinanceKeepsCursor(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	createDraft(t, store, "ord-1")
	advanceToSigned(t, store, "ord-1", "user-reviewer", "user-signer")

	first, err := store.PublishWithNumber(context.Background(), "ord-1", "user-approver", "")
	if err != nil {
		t.Fatalf("first publish: %v", err)
	}
	second, err := store.PublishWithNumber(context.Background(), "ord-1", "user-approver", "")
	if err != nil {
		t.Fatalf("second publish: %v", err)
	}
	if second.Allocated {
		t.Fatal("second publish should not allocate")
	}
	if second.Ordinance.OfficialNumber != first.Ordinance.OfficialNumber {
		t.Fatalf("official number changed: %q -> %q", first.Ordinance.OfficialNumber, second.Ordinance.OfficialNumber)
	}

	book, err := store.ActiveBook(context.Background())
	if err != nil {
		t.Fatalf("active book: %v", err)
	}
	if book.NextNumber != 2 {
		t.Fatalf("next number = %d, want 2 after idempotent republish", book.NextNumber)
	}
}

func TestConcurrentPublishAllocatesDenseRange(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	const publishers = 8
	for i := 0; i < publishers; i++ {
		id := fmt.Sprintf("ord-%d", i)
		createDraft(t, store, id)
		advanceToSigned(t, store, id, "user-reviewer", "user-signer")
	}

	var wg sync.WaitGroup
	results := make([]storage.PublishResult, publishers)
	errs := make([]error, publishers)
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("ord-%d", n)
			results[n], errs[n] = store.PublishWithNumber(context.Background(), id, "user-approver", "")
		}(i)
	}
	wg.Wait()

	seen := make(map[uint64]string, publishers)
	for i, err := range errs {
		if err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
		if !results[i].Allocated {
			t.Fatalf("publish %d did not allocate", i)
		}
	}

	book, err := store.ActiveBook(context.Background())
	if err != nil {
		t.Fatalf("active book: %v", err)
	}
	entries, err := store.ListAllocations(context.Background(), book.ID)
	if err != nil {
		t.Fatalf("list allocations: %v", err)
	}
	if len(entries) != publishers {
		t.Fatalf("allocation count = %d, want %d", len(entries), publishers)
	}
	for _, entry := range entries {
		if other, dup := seen[entry.RawNumber]; dup {
			t.Fatalf("number %d allocated to both %s and %s", entry.RawNumber, other, entry.OrdinanceID)
		}
		seen[entry.RawNumber] = entry.OrdinanceID
	}
	for n := uint64(1); n <= publishers; n++ {
		if _, ok := seen[n]; !ok {
			t.Fatalf("number %d missing from allocation log; issued set has a gap", n)
		}
	}
	if got := book.NextNumber - book.StartingNumber; got != uint64(len(entries)) {
		t.Fatalf("cursor advance = %d, want %d allocation log entries", got, len(entries))
	}
}

func TestMarkProcessingFailedAndRetry(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	createDraft(t, store, "ord-1")
	advanceToSigned(t, store, "ord-1", "user-reviewer", "user-signer")

	failed, err := store.MarkProcessingFailed(context.Background(), "ord-1", "renderer timeout", event(domain.EventProcessingFailed))
	if err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if failed.Status != domain.StatusProcessingFailed {
		t.Fatalf("status = %s, want %s", failed.Status, domain.StatusProcessingFailed)
	}
	if failed.FailureDetail != "renderer timeout" {
		t.Fatalf("failure detail = %q, want %q", failed.FailureDetail, "renderer timeout")
	}

	processing, err := store.MarkProcessing(context.Background(), "ord-1", event(domain.EventProcessingRetried))
	if err != nil {
		t.Fatalf("mark processing: %v", err)
	}
	if processing.Status != domain.StatusProcessing {
		t.Fatalf("status = %s, want %s", processing.Status, domain.StatusProcessing)
	}
	if processing.FailureDetail != "" {
		t.Fatalf("failure detail = %q, want cleared", processing.FailureDetail)
	}

	result, err := store.PublishWithNumber(context.Background(), "ord-1", "user-approver", "")
	if err != nil {
		t.Fatalf("publish after retry: %v", err)
	}
	if result.Ordinance.OfficialNumber != "PORT-0001/CITY" {
		t.Fatalf("official number = %q, want %q", result.Ordinance.OfficialNumber, "PORT-0001/CITY")
	}
}

func TestMarkProcessingFailedRejectsPublished(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	createDraft(t, store, "ord-1")
	advanceToSigned(t, store, "ord-1", "user-reviewer", "user-signer")
	if _, err := store.PublishWithNumber(context.Background(), "ord-1", "user-approver", ""); err != nil {
		t.Fatalf("publish: %v", err)
	}

	_, err := store.MarkProcessingFailed(context.Background(), "ord-1", "late failure", event(domain.EventProcessingFailed))
	if !errors.Is(err, storage.ErrStateConflict) {
		t.Fatalf("mark failed after publish error = %v, want %v", err, storage.ErrStateConflict)
	}
}

func TestActivityEventsRecordLifecycleInOrder(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	createDraft(t, store, "ord-1")
	advanceToSigned(t, store, "ord-1", "user-reviewer", "user-signer")
	if _, err := store.PublishWithNumber(context.Background(), "ord-1", "user-approver", ""); err != nil {
		t.Fatalf("publish: %v", err)
	}

	events, err := store.ListActivityEvents(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	wantTypes := []domain.EventType{
		domain.EventOrdinanceCreated,
		domain.EventSubmitted,
		domain.EventReviewClaimed,
		domain.EventReviewApproved,
		domain.EventSigned,
		domain.EventNumberAllocated,
		domain.EventPublished,
	}
	if len(events) != len(wantTypes) {
		t.Fatalf("event count = %d, want %d", len(events), len(wantTypes))
	}
	for i, want := range wantTypes {
		if events[i].EventType != want {
			t.Fatalf("event[%d] = %s, want %s", i, events[i].EventType, want)
		}
		if i > 0 && events[i].Seq <= events[i-1].Seq {
			t.Fatalf("event[%d] seq %d not after %d", i, events[i].Seq, events[i-1].Seq)
		}
	}
	allocation := events[5]
	if allocation.Metadata["official_number"] != "PORT-0001/CITY" {
		t.Fatalf("allocation metadata = %v, want official_number PORT-0001/CITY", allocation.Metadata)
	}
}

func TestActiveBookCreatesDefault(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	book, err := store.ActiveBook(context.Background())
	if err != nil {
		t.Fatalf("active book: %v", err)
	}
	if book.Name != domain.DefaultBookName {
		t.Fatalf("name = %q, want %q", book.Name, domain.DefaultBookName)
	}
	if book.NumberFormat != domain.DefaultNumberFormat {
		t.Fatalf("format = %q, want %q", book.NumberFormat, domain.DefaultNumberFormat)
	}
	if book.NextNumber != domain.DefaultStartingNumber {
		t.Fatalf("next number = %d, want %d", book.NextNumber, uint64(domain.DefaultStartingNumber))
	}

	again, err := store.ActiveBook(context.Background())
	if err != nil {
		t.Fatalf("active book again: %v", err)
	}
	if again.ID != book.ID {
		t.Fatalf("second ActiveBook returned %s, want %s", again.ID, book.ID)
	}
}

func TestUpdateBookFormatLeavesHistoryAlone(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	createDraft(t, store, "ord-1")
	advanceToSigned(t, store, "ord-1", "user-reviewer", "user-signer")
	if _, err := store.PublishWithNumber(context.Background(), "ord-1", "user-approver", ""); err != nil {
		t.Fatalf("publish: %v", err)
	}

	book, err := store.ActiveBook(context.Background())
	if err != nil {
		t.Fatalf("active book: %v", err)
	}
	updated, err := store.UpdateBookFormat(context.Background(), book.ID, "PT/{N}-2026")
	if err != nil {
		t.Fatalf("update format: %v", err)
	}
	if updated.NumberFormat != "PT/{N}-2026" {
		t.Fatalf("format = %q, want %q", updated.NumberFormat, "PT/{N}-2026")
	}
	if updated.NextNumber != book.NextNumber {
		t.Fatalf("next number = %d, want untouched %d", updated.NextNumber, book.NextNumber)
	}

	entries, err := store.ListAllocations(context.Background(), book.ID)
	if err != nil {
		t.Fatalf("list allocations: %v", err)
	}
	if entries[0].FormattedNumber != "PORT-0001/CITY" {
		t.Fatalf("historical allocation = %q, want format at issuance time", entries[0].FormattedNumber)
	}

	createDraft(t, store, "ord-2")
	advanceToSigned(t, store, "ord-2", "user-reviewer", "user-signer")
	result, err := store.PublishWithNumber(context.Background(), "ord-2", "user-approver", "")
	if err != nil {
		t.Fatalf("publish with new format: %v", err)
	}
	if result.Ordinance.OfficialNumber != "PT/0002-2026" {
		t.Fatalf("official number = %q, want %q", result.Ordinance.OfficialNumber, "PT/0002-2026")
	}
}

func TestUpdateBookFormatNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.UpdateBookFormat(context.Background(), "missing", "{N}")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want %v", err, storage.ErrNotFound)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "portaria.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

var draftSeq = struct {
	sync.Mutex
	n int
}{}

func draftOrdinance(id string, createdAt time.Time) domain.Ordinance {
	return domain.Ordinance{
		ID:              id,
		Title:           "Nomeação de J. Silva",
		ContentRef:      "doc://v1",
		Status:          domain.StatusDraft,
		SignatureStatus: domain.SignatureUnsigned,
		AuthorID:        "user-author",
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

func creationEvent() domain.ActivityEvent {
	return event(domain.EventOrdinanceCreated)
}

func event(eventType domain.EventType) domain.ActivityEvent {
	return domain.ActivityEvent{EventType: eventType, Message: string(eventType), ActorID: "user-actor"}
}

func createDraft(t *testing.T, store *Store, id string) {
	t.Helper()

	draftSeq.Lock()
	draftSeq.n++
	offset := draftSeq.n
	draftSeq.Unlock()

	createdAt := time.Date(2026, time.March, 12, 10, 0, 0, 0, time.UTC).Add(time.Duration(offset) * time.Second)
	if err := store.CreateOrdinance(context.Background(), draftOrdinance(id, createdAt), creationEvent()); err != nil {
		t.Fatalf("create draft %s: %v", id, err)
	}
}

func advanceToAssigned(t *testing.T, store *Store, id, reviewerID string) {
	t.Helper()

	if _, err := store.SubmitForReview(context.Background(), id, event(domain.EventSubmitted)); err != nil {
		t.Fatalf("submit %s: %v", id, err)
	}
	if _, err := store.ClaimReview(context.Background(), id, reviewerID, event(domain.EventReviewClaimed)); err != nil {
		t.Fatalf("claim %s: %v", id, err)
	}
}

func advanceToApproved(t *testing.T, store *Store, id, reviewerID string) {
	t.Helper()

	advanceToAssigned(t, store, id, reviewerID)
	if _, err := store.ApproveReview(context.Background(), id, reviewerID, event(domain.EventReviewApproved)); err != nil {
		t.Fatalf("approve %s: %v", id, err)
	}
}

func advanceToSigned(t *testing.T, store *Store, id, reviewerID, signerID string) {
	t.Helper()

	advanceToApproved(t, store, id, reviewerID)
	record := storage.SignatureRecord{
		SignerID:      signerID,
		Mode:          domain.SignatureDigital,
		ContentRef:    "doc://v1",
		IntegrityHash: "HASH-" + id,
	}
	if _, err := store.RecordSignature(context.Background(), id, record, event(domain.EventSigned)); err != nil {
		t.Fatalf("sign %s: %v", id, err)
	}
}
