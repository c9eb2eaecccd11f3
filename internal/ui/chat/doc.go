// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the main chat view component for the palaver TUI.

The chat package implements a multi-session chat interface using the
Bubble Tea framework: a sidebar listing conversations (most recent
first), a scrolling message viewport, a single-line composer, and a
status bar.

# Key Components

## Model (model.go)

The Model struct is the central Bubble Tea model. It holds no
conversation state of its own: every read is a snapshot from the session
controller and every intent (send, new, delete, switch, model change,
theme toggle) is dispatched to it. Replies arrive as replyMsg values
produced by a command that waits on the controller's reply channel, so a
reply updates the view whichever conversation is active when it lands.

## Update Loop (update.go)

Keyboard input, window resizes, spinner ticks, and reply resolution.

## View Rendering (view.go)

Header, sidebar, message bubbles with role-specific styling, composer,
and the status bar with the bound model and shortcut hints.

## Commands (commands.go)

Slash command registry supporting /help, /new, /delete, /model, /theme,
/export, and /quit.
*/
package chat
