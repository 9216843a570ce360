package stages

import (
	"fmt"

	"github.com/jeeves-cluster-organization/mailmind/engine/state"
)

// Prompt construction for each stage. Prompts interpolate the relevant
// slices of state as compact JSON.

func contextAnalysisPrompt(st *state.EmailState) string {
	return fmt.Sprintf(`As an email assistant, analyze the conversation and email context:
Current context: %s
Email threads: %s
Contact history: %s
Previous messages: %s

Update the context with:
1. Key topics and themes
2. Important deadlines or follow-ups
3. Relationship context with contacts
4. Action items and priorities
5. Related threads and conversations
6. Suggested response templates
7. Follow-up recommendations
Return a JSON object with updates.`,
		jsonString(st.Context),
		jsonString(st.Threads),
		jsonString(st.Contacts),
		jsonString(st.RecentMessages(3)),
	)
}

func routePrompt(last *state.Message) string {
	return fmt.Sprintf(`Analyze this email-related request and determine the primary task needed:
Request: %s

Available tasks: ['compose_email', 'analyze_email', 'summarize_email', 'generate_response']
Return only one task name.`,
		jsonString(last),
	)
}

func composePrompt(st *state.EmailState) string {
	return fmt.Sprintf(`As an email composer, help draft or modify an email:
Request: %s
Context: %s
Contact History: %s

Consider:
1. Appropriate tone and style
2. Previous interactions
3. Key points to address
4. Clear call-to-action

Draft the email content.`,
		jsonString(st.LastMessage()),
		jsonString(st.Context),
		jsonString(st.Contacts),
	)
}

func analyzePrompt(st *state.EmailState) string {
	return fmt.Sprintf(`Analyze this email thread and provide comprehensive insights:
Request: %s
Context: %s
Email Thread: %s
Contact History: %s
Previous Interactions: %s

Provide detailed analysis including:
1. Key points and main topics
2. Sentiment analysis and tone
3. Action items and deadlines
4. Required follow-ups and timeline
5. Priority level (urgent/high/medium/low)
6. Related threads or conversations
7. Contact relationship insights
8. Suggested response strategy
9. Recommended response templates
10. Time sensitivity assessment

Return analysis in JSON format with clear categorization.`,
		jsonString(st.LastMessage()),
		jsonString(st.Context),
		jsonString(st.Threads),
		jsonString(st.Contacts),
		jsonString(st.Stats),
	)
}

func summarizePrompt(st *state.EmailState) string {
	return fmt.Sprintf(`Summarize this email thread concisely:
Thread: %s
Request: %s

Provide:
1. Main topics
2. Key decisions
3. Action items
4. Important dates
5. Next steps`,
		jsonString(st.Threads),
		jsonString(st.LastMessage()),
	)
}

func respondPrompt(st *state.EmailState, analysis map[string]any, threadID string) string {
	var stats any
	if s, ok := st.Stats[threadID]; ok {
		stats = s
	} else {
		stats = map[string]any{}
	}
	var followUps any
	if f, ok := st.FollowUps[threadID]; ok {
		followUps = f
	} else {
		followUps = map[string]any{}
	}

	return fmt.Sprintf(`Generate a contextually aware email response based on:
Context: %s
Analysis: %s
Email Stats: %s
Follow-ups: %s
Priority: %s
Available Templates: %s

Requirements:
1. Professional and appropriate tone matching previous interactions
2. Address all action items and questions
3. Include relevant context from previous conversations
4. Clear next steps and expectations
5. Appropriate follow-up timeline
6. Priority-appropriate response timing
7. Maintain relationship context
8. Reference related threads if relevant

Generate a complete response with:
- Subject line (if needed)
- Greeting appropriate to relationship
- Main content
- Clear action items or next steps
- Professional closing`,
		jsonString(st.Context),
		jsonString(analysis),
		jsonString(stats),
		jsonString(followUps),
		jsonString(st.PriorityFor(threadID)),
		jsonString(st.ResponseTemplates),
	)
}
