package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukerupert/famdo/internal/coordinator"
	"github.com/dukerupert/famdo/internal/database"
	"github.com/dukerupert/famdo/internal/model"
	"github.com/dukerupert/famdo/internal/notify"
	"github.com/dukerupert/famdo/internal/store"
	"github.com/dukerupert/famdo/internal/websocket"
)

func setupDispatcher(t *testing.T) (*Dispatcher, *notify.Recorder) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewDocumentStore(store.NewSQLiteBackend(db), "famdo_data", logger)
	rec := &notify.Recorder{}
	c := coordinator.New(st, notify.NewListeners(logger), rec, logger)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return NewDispatcher(c, logger), rec
}

func call(t *testing.T, d *Dispatcher, msg string) websocket.Response {
	t.Helper()
	return d.HandleCommand(context.Background(), []byte(msg))
}

// decode round-trips the result through JSON into v.
func decode(t *testing.T, resp websocket.Response, v any) {
	t.Helper()
	if !resp.Success {
		t.Fatalf("command failed: %+v", resp.Error)
	}
	data, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
}

func mustFail(t *testing.T, resp websocket.Response, code string) {
	t.Helper()
	if resp.Success {
		t.Fatalf("expected failure %s, got success: %+v", code, resp.Result)
	}
	if resp.Error == nil || resp.Error.Code != code {
		t.Fatalf("expected error code %s, got %+v", code, resp.Error)
	}
}

func TestChoreLifecycleCommands(t *testing.T) {
	d, rec := setupDispatcher(t)

	var parent, child model.Member
	decode(t, call(t, d, `{"id":1,"type":"famdo/add_member","name":"Mom","role":"parent","ha_user_id":"u-mom"}`), &parent)
	decode(t, call(t, d, `{"id":2,"type":"famdo/add_member","name":"Alex"}`), &child)
	if child.Role != model.RoleChild || child.Color != model.DefaultMemberColor {
		t.Errorf("expected member defaults, got %+v", child)
	}

	var ch model.Chore
	decode(t, call(t, d, `{"id":3,"type":"famdo/add_chore","name":"Dishes","points":15}`), &ch)
	if ch.Status != model.ChoreStatusPending || ch.Points != 15 {
		t.Fatalf("unexpected chore: %+v", ch)
	}

	decode(t, call(t, d, fmt.Sprintf(`{"id":4,"type":"famdo/claim_chore","chore_id":%q,"member_id":%q}`, ch.ID, child.ID)), &ch)
	if ch.Status != model.ChoreStatusClaimed {
		t.Errorf("expected claimed, got %s", ch.Status)
	}
	decode(t, call(t, d, fmt.Sprintf(`{"id":5,"type":"famdo/complete_chore","chore_id":%q,"member_id":%q}`, ch.ID, child.ID)), &ch)
	if ch.Status != model.ChoreStatusAwaitingApproval {
		t.Errorf("expected awaiting_approval, got %s", ch.Status)
	}

	// Approval through the linked auth user.
	resp := call(t, d, fmt.Sprintf(`{"id":6,"type":"famdo/approve_chore","chore_id":%q,"approver_id":"ha_user:u-mom"}`, ch.ID))
	if resp.ID != 6 || resp.Type != "result" {
		t.Errorf("unexpected envelope: %+v", resp)
	}
	decode(t, resp, &ch)
	if ch.Status != model.ChoreStatusCompleted {
		t.Errorf("expected completed, got %s", ch.Status)
	}
	if ch.ApprovedBy == nil || *ch.ApprovedBy != parent.ID {
		t.Errorf("expected approved_by %s, got %v", parent.ID, ch.ApprovedBy)
	}

	var doc model.Document
	decode(t, call(t, d, `{"id":7,"type":"famdo/get_data"}`), &doc)
	if got := doc.Member(child.ID).Points; got != 15 {
		t.Errorf("expected 15 points, got %d", got)
	}
	if len(rec.Named(notify.EventChoreCompleted)) != 1 {
		t.Errorf("expected one chore_completed event")
	}
}

func TestRefusedCommands(t *testing.T) {
	d, _ := setupDispatcher(t)

	var child model.Member
	decode(t, call(t, d, `{"id":1,"type":"famdo/add_member","name":"Alex"}`), &child)
	var ch model.Chore
	decode(t, call(t, d, `{"id":2,"type":"famdo/add_chore","name":"Dishes"}`), &ch)

	mustFail(t, call(t, d, fmt.Sprintf(`{"id":3,"type":"famdo/complete_chore","chore_id":%q,"member_id":%q}`, ch.ID, child.ID)), websocket.CodeFailed)
	mustFail(t, call(t, d, `{"id":4,"type":"famdo/update_member","member_id":"nope","name":"x"}`), websocket.CodeFailed)

	// An unlinked auth user is not resolved to anyone.
	decode(t, call(t, d, fmt.Sprintf(`{"id":5,"type":"famdo/claim_chore","chore_id":%q,"member_id":%q}`, ch.ID, child.ID)), &ch)
	decode(t, call(t, d, fmt.Sprintf(`{"id":6,"type":"famdo/complete_chore","chore_id":%q,"member_id":%q}`, ch.ID, child.ID)), &ch)
	resp := call(t, d, fmt.Sprintf(`{"id":7,"type":"famdo/approve_chore","chore_id":%q,"approver_id":"ha_user:ghost"}`, ch.ID))
	mustFail(t, resp, websocket.CodeFailed)
	if resp.Error.Message != "Could not approve chore" {
		t.Errorf("unexpected message %q", resp.Error.Message)
	}
}

func TestInvalidCommands(t *testing.T) {
	d, _ := setupDispatcher(t)

	tests := []struct {
		name string
		msg  string
		code string
	}{
		{"malformed json", `{"id":1,`, websocket.CodeInvalidFormat},
		{"unknown command", `{"id":1,"type":"famdo/launch_rocket"}`, websocket.CodeUnknownCommand},
		{"missing name", `{"id":1,"type":"famdo/add_chore"}`, websocket.CodeInvalidFormat},
		{"bad recurrence", `{"id":1,"type":"famdo/add_chore","name":"x","recurrence":"hourly"}`, websocket.CodeInvalidFormat},
		{"negative points", `{"id":1,"type":"famdo/add_chore","name":"x","points":-3}`, websocket.CodeInvalidFormat},
		{"bad role", `{"id":1,"type":"famdo/add_member","name":"x","role":"boss"}`, websocket.CodeInvalidFormat},
		{"wrong type", `{"id":1,"type":"famdo/claim_chore","chore_id":5,"member_id":"m"}`, websocket.CodeInvalidFormat},
		{"bad event date", `{"id":1,"type":"famdo/add_event","title":"x","start_date":"03/10/2026"}`, websocket.CodeInvalidFormat},
		{"bad chore due date", `{"id":1,"type":"famdo/add_chore","name":"x","due_date":"next week"}`, websocket.CodeInvalidFormat},
		{"bad chore due time", `{"id":1,"type":"famdo/add_chore","name":"x","due_time":"8pm"}`, websocket.CodeInvalidFormat},
		{"bad todo due date", `{"id":1,"type":"famdo/add_todo","title":"x","due_date":"2026-13-01"}`, websocket.CodeInvalidFormat},
		{"zero points award", `{"id":1,"type":"famdo/add_points","member_id":"m","points":0}`, websocket.CodeInvalidFormat},
		{"empty family name", `{"id":1,"type":"famdo/update_settings","family_name":"  "}`, websocket.CodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustFail(t, call(t, d, tt.msg), tt.code)
		})
	}
}

func TestValidationMessageUsesJSONNames(t *testing.T) {
	d, _ := setupDispatcher(t)
	resp := call(t, d, `{"id":1,"type":"famdo/claim_chore","member_id":"m"}`)
	mustFail(t, resp, websocket.CodeInvalidFormat)
	if !strings.Contains(resp.Error.Message, "chore_id") {
		t.Errorf("expected message to name chore_id, got %q", resp.Error.Message)
	}
}

func TestRewardCommands(t *testing.T) {
	d, rec := setupDispatcher(t)

	var parent, child model.Member
	decode(t, call(t, d, `{"id":1,"type":"famdo/add_member","name":"Dad","role":"parent"}`), &parent)
	decode(t, call(t, d, `{"id":2,"type":"famdo/add_member","name":"Sam","points":60}`), &child)

	var reward model.Reward
	decode(t, call(t, d, `{"id":3,"type":"famdo/add_reward","name":"Movie night"}`), &reward)
	if reward.PointsCost != 50 || reward.Quantity != model.UnlimitedQuantity {
		t.Fatalf("expected reward defaults, got %+v", reward)
	}

	var claim model.RewardClaim
	decode(t, call(t, d, fmt.Sprintf(`{"id":4,"type":"famdo/claim_reward","reward_id":%q,"member_id":%q}`, reward.ID, child.ID)), &claim)
	if claim.PointsSpent != 50 || claim.Status != model.ClaimStatusPending {
		t.Errorf("unexpected claim: %+v", claim)
	}
	mustFail(t, call(t, d, fmt.Sprintf(`{"id":5,"type":"famdo/claim_reward","reward_id":%q,"member_id":%q}`, reward.ID, child.ID)), websocket.CodeFailed)

	mustFail(t, call(t, d, fmt.Sprintf(`{"id":6,"type":"famdo/fulfill_reward_claim","claim_id":%q,"fulfiller_id":%q}`, claim.ID, child.ID)), websocket.CodeFailed)
	decode(t, call(t, d, fmt.Sprintf(`{"id":7,"type":"famdo/fulfill_reward_claim","claim_id":%q,"fulfiller_id":%q}`, claim.ID, parent.ID)), &claim)
	if claim.Status != model.ClaimStatusFulfilled {
		t.Errorf("expected fulfilled, got %s", claim.Status)
	}
	if len(rec.Named(notify.EventRewardClaimed)) != 1 || len(rec.Named(notify.EventRewardFulfilled)) != 1 {
		t.Errorf("expected claim and fulfill events, got %+v", rec.Events())
	}

	var del struct {
		Success bool `json:"success"`
	}
	decode(t, call(t, d, fmt.Sprintf(`{"id":8,"type":"famdo/delete_reward","reward_id":%q}`, reward.ID)), &del)
	if !del.Success {
		t.Error("expected delete to succeed")
	}
	decode(t, call(t, d, fmt.Sprintf(`{"id":9,"type":"famdo/delete_reward","reward_id":%q}`, reward.ID)), &del)
	if del.Success {
		t.Error("expected second delete to report false")
	}
}

func TestUpdateChoreNullsField(t *testing.T) {
	d, _ := setupDispatcher(t)

	var ch model.Chore
	decode(t, call(t, d, `{"id":1,"type":"famdo/add_chore","name":"Trash","assigned_to":"m1","due_date":"2026-03-12"}`), &ch)
	decode(t, call(t, d, fmt.Sprintf(`{"id":2,"type":"famdo/update_chore","chore_id":%q,"assigned_to":null,"points":3}`, ch.ID)), &ch)
	if ch.AssignedTo != nil {
		t.Errorf("expected assigned_to cleared, got %v", *ch.AssignedTo)
	}
	if ch.Points != 3 {
		t.Errorf("expected 3 points, got %d", ch.Points)
	}
	if ch.DueDate == nil || *ch.DueDate != "2026-03-12" {
		t.Errorf("due_date should be untouched, got %v", ch.DueDate)
	}
}

func TestSettingsAndBulkCommands(t *testing.T) {
	d, _ := setupDispatcher(t)

	decode(t, call(t, d, `{"id":1,"type":"famdo/update_settings","family_name":"Garcias","theme":"dark"}`), &struct{}{})

	var doc model.Document
	decode(t, call(t, d, `{"id":2,"type":"famdo/get_data"}`), &doc)
	if doc.FamilyName != "Garcias" {
		t.Errorf("expected family name Garcias, got %q", doc.FamilyName)
	}
	if doc.Settings["theme"] != "dark" {
		t.Errorf("expected theme setting, got %v", doc.Settings)
	}
	if _, ok := doc.Settings["id"]; ok {
		t.Error("envelope id leaked into settings")
	}

	call(t, d, `{"id":3,"type":"famdo/add_todo","title":"Buy milk"}`)
	call(t, d, `{"id":4,"type":"famdo/add_todo","title":"Call plumber"}`)

	var bulk struct {
		Success bool `json:"success"`
		Count   int  `json:"count"`
	}
	decode(t, call(t, d, `{"id":5,"type":"famdo/delete_all_todos"}`), &bulk)
	if !bulk.Success || bulk.Count != 2 {
		t.Errorf("expected 2 deleted todos, got %+v", bulk)
	}

	call(t, d, `{"id":6,"type":"famdo/add_member","name":"Kim"}`)
	var cleared struct {
		Success bool                    `json:"success"`
		Counts  coordinator.ClearCounts `json:"counts"`
	}
	decode(t, call(t, d, `{"id":7,"type":"famdo/clear_all_data","keep_members":true}`), &cleared)
	if !cleared.Success || cleared.Counts.Members != 0 {
		t.Errorf("unexpected clear result: %+v", cleared)
	}
}

func TestGetEventsCommand(t *testing.T) {
	d, _ := setupDispatcher(t)

	call(t, d, `{"id":1,"type":"famdo/add_event","title":"Swim","start_date":"2026-03-02","recurrence":"weekly"}`)

	var occ []coordinator.Occurrence
	decode(t, call(t, d, `{"id":2,"type":"famdo/get_events","start":"2026-03-01","end":"2026-04-01"}`), &occ)
	if len(occ) != 5 {
		t.Fatalf("expected 5 weekly occurrences in March, got %d", len(occ))
	}

	mustFail(t, call(t, d, `{"id":3,"type":"famdo/get_events","start":"2026-04-01","end":"2026-03-01"}`), websocket.CodeInvalidFormat)
}

func TestCommandsRegistered(t *testing.T) {
	d, _ := setupDispatcher(t)
	want := []string{
		"get_data", "subscribe",
		"add_member", "update_member", "remove_member", "add_points",
		"add_chore", "update_chore", "claim_chore", "complete_chore", "approve_chore",
		"reject_chore", "retry_chore", "reactivate_template", "delete_chore",
		"add_reward", "update_reward", "claim_reward", "fulfill_reward_claim", "delete_reward",
		"update_reward_claim", "delete_reward_claim",
		"add_todo", "update_todo", "complete_todo", "delete_todo",
		"add_event", "update_event", "delete_event",
		"update_settings",
		"delete_all_chores", "delete_all_rewards", "delete_all_reward_claims",
		"delete_all_todos", "delete_all_events", "delete_all_members", "clear_all_data",
	}
	for _, name := range want {
		if _, ok := d.commands["famdo/"+name]; !ok {
			t.Errorf("command famdo/%s not registered", name)
		}
	}
}

func TestHTTPCommand(t *testing.T) {
	d, _ := setupDispatcher(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"ok", `{"type":"famdo/add_member","name":"Lee"}`, http.StatusOK},
		{"invalid", `{"type":"famdo/add_member"}`, http.StatusBadRequest},
		{"unknown", `{"type":"famdo/nope"}`, http.StatusBadRequest},
		{"refused", `{"type":"famdo/claim_chore","chore_id":"a","member_id":"b"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/commands", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			d.Command(rr, req)

			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
			var resp websocket.Response
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Success != (tt.status == http.StatusOK) {
				t.Errorf("unexpected success flag: %+v", resp)
			}
		})
	}
}

func TestHTTPDataAndHealth(t *testing.T) {
	d, _ := setupDispatcher(t)
	call(t, d, `{"id":1,"type":"famdo/add_member","name":"Lee"}`)

	rr := httptest.NewRecorder()
	d.Data(rr, httptest.NewRequest("GET", "/api/data", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var doc model.Document
	if err := json.NewDecoder(rr.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Members) != 1 || doc.FamilyName != model.DefaultFamilyName {
		t.Errorf("unexpected document: %+v", doc)
	}

	rr = httptest.NewRecorder()
	Health(rr, httptest.NewRequest("GET", "/health", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"ok"`) {
		t.Errorf("unexpected health response: %d %s", rr.Code, rr.Body.String())
	}
}

func TestPatchDatesValidated(t *testing.T) {
	d, _ := setupDispatcher(t)

	var ch model.Chore
	decode(t, call(t, d, `{"id":1,"type":"famdo/add_chore","name":"Dishes","due_date":"2026-03-10"}`), &ch)

	mustFail(t, call(t, d, fmt.Sprintf(`{"id":2,"type":"famdo/update_chore","chore_id":%q,"due_date":"tomorrow"}`, ch.ID)), websocket.CodeInvalidFormat)
	mustFail(t, call(t, d, fmt.Sprintf(`{"id":3,"type":"famdo/update_chore","chore_id":%q,"due_time":"25:00"}`, ch.ID)), websocket.CodeInvalidFormat)

	decode(t, call(t, d, fmt.Sprintf(`{"id":4,"type":"famdo/update_chore","chore_id":%q,"due_date":"2026-03-12","due_time":"18:30"}`, ch.ID)), &ch)
	if ch.DueDate == nil || *ch.DueDate != "2026-03-12" || ch.DueTime == nil || *ch.DueTime != "18:30" {
		t.Errorf("expected new due date and time, got %v %v", ch.DueDate, ch.DueTime)
	}

	// An explicit null still clears the field.
	decode(t, call(t, d, fmt.Sprintf(`{"id":5,"type":"famdo/update_chore","chore_id":%q,"due_date":null}`, ch.ID)), &ch)
	if ch.DueDate != nil {
		t.Errorf("expected due date cleared, got %v", *ch.DueDate)
	}
}
