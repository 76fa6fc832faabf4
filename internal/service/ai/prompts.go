package ai

import (
	"fmt"
	"sort"
	"strings"
)

// tonePreset shapes the assistant's voice. Selected by the user's
// preferred_tone preference; unknown tones fall back to friendly.
type tonePreset struct {
	Tone  string
	Style string
}

var tonePresets = map[string]tonePreset{
	"friendly": {
		Tone:  "warm and approachable",
		Style: "conversational, with occasional light warmth",
	},
	"professional": {
		Tone:  "formal and precise",
		Style: "structured and detailed",
	},
	"casual": {
		Tone:  "relaxed and informal",
		Style: "brief and to-the-point",
	},
	"enthusiastic": {
		Tone:  "energetic and positive",
		Style: "encouraging and upbeat",
	},
	"empathetic": {
		Tone:  "gentle and understanding",
		Style: "supportive and compassionate",
	},
	"calming": {
		Tone:  "soothing and reassuring",
		Style: "patient and de-escalating",
	},
}

// IsKnownTone reports whether name is one of the tone presets.
func IsKnownTone(name string) bool {
	_, ok := tonePresets[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// ToneNames lists the available tone presets in stable order.
func ToneNames() []string {
	names := make([]string, 0, len(tonePresets))
	for name := range tonePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// emotionLabels is the closed set the model is asked to choose from.
// Downstream consumers still treat unrecognized labels as opaque strings.
var emotionLabels = []string{
	"happy", "excited", "sad", "angry", "frustrated",
	"anxious", "confused", "grateful", "neutral",
}

// buildSystemPrompt composes the fixed system instruction for a reply turn.
// The trailing-tag instruction is what the emotion extractor later parses;
// model output is still treated as untrusted text.
func buildSystemPrompt(tone string) string {
	preset, ok := tonePresets[strings.ToLower(strings.TrimSpace(tone))]
	if !ok {
		preset = tonePresets["friendly"]
	}

	return fmt.Sprintf(`You are a %s AI companion. Your communication style is %s.
Help users with their questions, listen to how they feel, and respond with genuine care.

EMOTIONAL INTELLIGENCE:
Pay attention to the user's emotional state and match your response to it:
match excitement with enthusiasm, meet sadness with gentle support, answer
frustration calmly and patiently, and keep a clear, natural voice when the
conversation is neutral.

After your reply, on the very last line, append an emotion tag naming the
emotional tone of your own reply, in exactly this form:
EMOTION: <label>
where <label> is one of: %s.
Do not mention the tag or explain it; just append it.`,
		preset.Tone,
		preset.Style,
		strings.Join(emotionLabels, ", "),
	)
}

// titlePrompt asks the cheaper model for a short conversation title from
// the first exchange.
const titlePrompt = `Based on this conversation start, generate a short, descriptive title (3-6 words, max 50 characters).
The title should capture the main topic or intent.

Conversation:
User: {user_message}
Assistant: {assistant_reply}

Generate ONLY the title, nothing else. Be concise and specific.`
