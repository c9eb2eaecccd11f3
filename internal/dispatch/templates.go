// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch produces simulated model replies.
package dispatch

// Response templates keyed by model id. Each template takes the prompt as
// its single %s argument. Texts mirror the tone each provider is known
// for; the default-model template serves every unrecognized id.
var responseTemplates = map[string]string{
	"gpt-4o": `I'm GPT-4o from OpenAI. Regarding "%s", I can provide comprehensive assistance with analysis, creative tasks, and problem-solving.

**Key capabilities:**
- Advanced reasoning and analysis
- Code generation and debugging
- Creative writing and ideation
- Complex problem solving

How can I help you explore this topic further?`,

	"claude-3-5-sonnet": `Hello! I'm Claude 3.5 Sonnet from Anthropic. About "%s" - I aim to provide thoughtful, nuanced responses while prioritizing safety and accuracy.

**My approach:**
- Thorough analysis with multiple perspectives
- Safety-first reasoning
- Honest acknowledgment of limitations
- Helpful and harmless responses

What specific aspect would you like me to focus on?`,

	"gemini-1-5-pro": `Hi! I'm Gemini 1.5 Pro from Google. For "%s", I can leverage my multimodal capabilities and real-time information access.

**What I offer:**
- Google Search integration
- Multimodal analysis (text, images, audio)
- Large context window processing
- Workspace integration

Would you like me to search for current information on this topic?`,

	"copilot-gpt-4": `I'm Microsoft Copilot powered by GPT-4. Regarding "%s", I can assist with:

**Available tools:**
- Bing Search for latest information
- Office 365 integration
- Code assistance and debugging
- DALL-E 3 image generation

How would you like to proceed with this query?`,

	"perplexity-sonar": `I'm Perplexity AI. I'll research "%s" using real-time web search with verified citations.

**Research methodology:**
- Real-time web search
- Source verification and citations
- Fact-checking and validation
- Academic and reliable sources

Let me search for the most current information on this topic.`,

	"llama-3-70b": `I'm Llama 3 70B from Meta. For "%s", I can provide assistance as an open-source language model.

**Open-source benefits:**
- Transparent model architecture
- Community-driven development
- Customizable for specific needs
- No vendor lock-in

How can I help you with this topic?`,
}
