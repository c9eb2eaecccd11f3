// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session is the conversation lifecycle core of palaver.
package session

import (
	"context"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/morganforge/palaver/internal/dispatch"
	"github.com/morganforge/palaver/internal/model"
)

func newTestController(t *testing.T, latency dispatch.Latency) (*Controller, *memAdapter) {
	t.Helper()
	adapter := &memAdapter{}
	store := NewStore(adapter, testLogger(), model.DefaultModelID, model.DefaultParameters())
	d := dispatch.NewDispatcher(dispatch.Config{Latency: latency})
	return NewController(store, d, testLogger()), adapter
}

func awaitReply(t *testing.T, ch <-chan Reply) Reply {
	t.Helper()
	select {
	case reply := <-ch:
		return reply
	case <-time.After(5 * time.Second):
		t.Fatal("reply did not resolve")
		return Reply{}
	}
}

// =============================================================================
// SEND TESTS
// =============================================================================

func TestSendMessage_FullExchange(t *testing.T) {
	c, _ := newTestController(t, dispatch.FixedLatency(0))

	ch, ok := c.SendMessage("Explain quicksort please")
	if !ok {
		t.Fatal("SendMessage() refused a valid send")
	}
	reply := awaitReply(t, ch)
	if reply.Discarded {
		t.Fatal("reply was discarded")
	}

	conv := c.Active()
	if conv.Title != "Explain quicksort please" {
		t.Errorf("Title = %q, want the derived title", conv.Title)
	}
	if conv.MessageCount() != 2 {
		t.Fatalf("MessageCount() = %d, want 2", conv.MessageCount())
	}

	user := conv.Messages[0]
	if user.Role != model.RoleUser || user.Content != "Explain quicksort please" {
		t.Errorf("first message = %+v, want the user message", user)
	}

	assistant := conv.Messages[1]
	if assistant.Role != model.RoleAssistant {
		t.Fatalf("second message role = %q, want assistant", assistant.Role)
	}
	if !strings.Contains(assistant.Content, `"Explain quicksort please"`) {
		t.Errorf("reply does not echo the prompt: %q", assistant.Content)
	}
	if assistant.Model != "GPT-4o" {
		t.Errorf("Model = %q, want GPT-4o", assistant.Model)
	}
	if assistant.Tokens == nil {
		t.Fatal("assistant message has no token accounting")
	}
	if assistant.Tokens.Input != 6 || assistant.Tokens.Output != dispatch.DefaultOutputTokens {
		t.Errorf("Tokens = %+v, want input 6 / output %d", assistant.Tokens, dispatch.DefaultOutputTokens)
	}
}

func TestSendMessage_BlankIsRefusedWithoutSideEffects(t *testing.T) {
	c, adapter := newTestController(t, dispatch.FixedLatency(0))
	before := adapter.saveCount()

	for _, text := range []string{"", "   ", "\n\t "} {
		if _, ok := c.SendMessage(text); ok {
			t.Errorf("SendMessage(%q) = true, want refusal", text)
		}
	}

	if c.Active().MessageCount() != 0 {
		t.Error("blank send committed a message")
	}
	if adapter.saveCount() != before {
		t.Error("blank send triggered a persistence write")
	}
}

func TestSendMessage_TrimsSurroundingWhitespace(t *testing.T) {
	c, _ := newTestController(t, dispatch.FixedLatency(0))

	ch, ok := c.SendMessage("  hello there  ")
	if !ok {
		t.Fatal("SendMessage() refused a valid send")
	}
	awaitReply(t, ch)

	if got := c.Active().Messages[0].Content; got != "hello there" {
		t.Errorf("committed content = %q, want trimmed", got)
	}
}

func TestSendMessage_TitleDerivedOnlyFromFirstMessage(t *testing.T) {
	c, _ := newTestController(t, dispatch.FixedLatency(0))

	awaitReply2 := func(text string) {
		ch, ok := c.SendMessage(text)
		if !ok {
			t.Fatalf("SendMessage(%q) refused", text)
		}
		awaitReply(t, ch)
	}

	awaitReply2("short title")
	awaitReply2("a much longer follow-up message that should not retitle anything")

	if got := c.Active().Title; got != "short title" {
		t.Errorf("Title = %q, want the first message's derivation", got)
	}
}

func TestSendMessage_RefusedWhilePendingOnSameConversation(t *testing.T) {
	c, _ := newTestController(t, dispatch.FixedLatency(time.Minute))

	first, ok := c.SendMessage("one")
	if !ok {
		t.Fatal("first send refused")
	}
	if !c.PendingActive() {
		t.Fatal("PendingActive() = false during an in-flight reply")
	}
	if _, ok := c.SendMessage("two"); ok {
		t.Error("second send accepted while a reply is pending")
	}

	// cleanup: abandon the in-flight reply
	c.DeleteConversation(c.Active().ID)
	awaitReply(t, first)
}

// blockFirstLatency blocks the first dispatch until its context is
// cancelled; later dispatches resolve immediately.
type blockFirstLatency struct {
	calls atomic.Int32
}

func (l *blockFirstLatency) Wait(ctx context.Context) error {
	if l.calls.Add(1) == 1 {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func TestSendMessage_OtherConversationsUnaffectedByPending(t *testing.T) {
	latency := &blockFirstLatency{}
	c, _ := newTestController(t, latency)
	slow := c.Active().ID

	first, ok := c.SendMessage("slow question")
	if !ok {
		t.Fatal("first send refused")
	}
	// ensure the slow dispatch holds the first-call block before the
	// second send races it to the latency gate
	deadline := time.Now().Add(5 * time.Second)
	for latency.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("slow dispatch never reached the latency gate")
		}
		runtime.Gosched()
	}

	c.NewConversation()
	if c.PendingActive() {
		t.Error("fresh conversation inherited the pending flag")
	}

	ch, ok := c.SendMessage("fast question")
	if !ok {
		t.Fatal("send on a fresh conversation refused while another is pending")
	}
	awaitReply(t, ch)
	if got := c.Active().MessageCount(); got != 2 {
		t.Errorf("fresh conversation MessageCount() = %d, want 2", got)
	}

	// cleanup: abandon the blocked reply
	c.DeleteConversation(slow)
	awaitReply(t, first)
}

// =============================================================================
// REPLY ROUTING TESTS
// =============================================================================

func TestReply_LandsInOriginatingConversationAfterSwitch(t *testing.T) {
	c, _ := newTestController(t, dispatch.FixedLatency(50*time.Millisecond))
	origin := c.Active().ID

	ch, ok := c.SendMessage("where does this land")
	if !ok {
		t.Fatal("send refused")
	}

	other := c.NewConversation()
	reply := awaitReply(t, ch)

	if reply.Discarded {
		t.Fatal("reply was discarded")
	}
	if reply.ConversationID != origin {
		t.Errorf("ConversationID = %q, want origin %q", reply.ConversationID, origin)
	}

	originConv, _ := c.store.Get(origin)
	if originConv.MessageCount() != 2 {
		t.Errorf("origin MessageCount() = %d, want 2", originConv.MessageCount())
	}
	otherConv, _ := c.store.Get(other.ID)
	if otherConv.MessageCount() != 0 {
		t.Errorf("reply leaked into another conversation (%d messages)", otherConv.MessageCount())
	}
}

func TestReply_DiscardedWhenConversationDeletedMidFlight(t *testing.T) {
	c, _ := newTestController(t, dispatch.FixedLatency(time.Minute))
	origin := c.Active().ID

	ch, ok := c.SendMessage("doomed question")
	if !ok {
		t.Fatal("send refused")
	}

	if !c.DeleteConversation(origin) {
		t.Fatal("DeleteConversation() = false")
	}

	reply := awaitReply(t, ch)
	if !reply.Discarded {
		t.Error("reply should be discarded after its conversation was deleted")
	}
	if c.PendingActive() {
		t.Error("pending flag survived the delete")
	}
	for _, conv := range c.Conversations() {
		if conv.MessageCount() != 0 {
			t.Errorf("discarded reply landed in conversation %q", conv.ID)
		}
	}
}

// =============================================================================
// LIFECYCLE TESTS
// =============================================================================

func TestNewConversation_ClearsDraftAndActivates(t *testing.T) {
	c, _ := newTestController(t, dispatch.FixedLatency(0))
	c.SetDraft("half-typed thought")

	conv := c.NewConversation()

	if c.Active().ID != conv.ID {
		t.Error("new conversation is not active")
	}
	if c.Draft() != "" {
		t.Errorf("Draft() = %q, want cleared", c.Draft())
	}
}

func TestDeleteConversation_LastOneRegenerates(t *testing.T) {
	c, _ := newTestController(t, dispatch.FixedLatency(0))

	ch, _ := c.SendMessage("Explain quicksort please")
	awaitReply(t, ch)
	old := c.Active().ID

	c.DeleteConversation(old)

	conv := c.Active()
	if conv.ID == old {
		t.Error("replacement conversation reused the deleted id")
	}
	if conv.Title != model.DefaultTitle || !conv.IsEmpty() {
		t.Errorf("replacement = %q with %d messages, want empty default", conv.Title, conv.MessageCount())
	}
}

func TestSwitchConversation_LoadsBoundModelAndParameters(t *testing.T) {
	c, _ := newTestController(t, dispatch.FixedLatency(0))
	first := c.Active().ID
	c.SetModel("claude-3-5-sonnet")
	params := model.DefaultParameters()
	params.Temperature = 1.3
	c.SetParameters(params)

	second := c.NewConversation()
	c.SetModel("llama-3-70b")

	if !c.SwitchConversation(first) {
		t.Fatal("SwitchConversation() = false for existing id")
	}
	if got := c.Model().ID; got != "claude-3-5-sonnet" {
		t.Errorf("Model().ID = %q, want the first conversation's binding", got)
	}
	if got := c.Parameters().Temperature; got != 1.3 {
		t.Errorf("Temperature = %v, want 1.3", got)
	}

	c.SwitchConversation(second.ID)
	if got := c.Model().ID; got != "llama-3-70b" {
		t.Errorf("Model().ID = %q after switching back, want llama-3-70b", got)
	}
}

func TestSwitchConversation_UnknownIDIsSilent(t *testing.T) {
	c, _ := newTestController(t, dispatch.FixedLatency(0))
	current := c.Active().ID

	if c.SwitchConversation("no-such-id") {
		t.Error("SwitchConversation() = true for unknown id")
	}
	if c.Active().ID != current {
		t.Error("active conversation changed on a failed switch")
	}
}

func TestSetModel_UnknownIDFallsBackToDefault(t *testing.T) {
	c, _ := newTestController(t, dispatch.FixedLatency(0))

	c.SetModel("made-up-model")

	if got := c.Model().ID; got != model.DefaultModelID {
		t.Errorf("Model().ID = %q, want %q", got, model.DefaultModelID)
	}
	if got := c.Active().Model; got != model.DefaultModelID {
		t.Errorf("active conversation Model = %q, want rebinding", got)
	}
}

// =============================================================================
// PERSISTENCE SEQUENCING TESTS
// =============================================================================

// TestPersistence_SurvivesReload drives a full exchange, then rebuilds
// the stack over the same adapter and checks nothing was lost.
func TestPersistence_SurvivesReload(t *testing.T) {
	adapter := &memAdapter{}
	store := NewStore(adapter, testLogger(), model.DefaultModelID, model.DefaultParameters())
	d := dispatch.NewDispatcher(dispatch.Config{Latency: dispatch.FixedLatency(0)})
	c := NewController(store, d, testLogger())

	ch, _ := c.SendMessage("Explain quicksort please")
	awaitReply(t, ch)
	c.NewConversation()

	reloaded := NewStore(adapter, testLogger(), model.DefaultModelID, model.DefaultParameters())
	if reloaded.Len() != 2 {
		t.Fatalf("reloaded Len() = %d, want 2", reloaded.Len())
	}
	snap := reloaded.Snapshot()
	if snap[1].Title != "Explain quicksort please" {
		t.Errorf("reloaded title = %q", snap[1].Title)
	}
	if snap[1].MessageCount() != 2 {
		t.Errorf("reloaded MessageCount() = %d, want 2", snap[1].MessageCount())
	}
}
