package prompts

// RenderAnswerPrompt builds the system and user prompts for a direct
// retrieval-augmented answer over a tenant's knowledge base.
func RenderAnswerPrompt(tenant, question, context string) (systemPrompt, userPrompt string, err error) {
	systemPrompt, err = loadPrompt("templates/answer_system.md", map[string]string{
		"Tenant": tenant,
	})
	if err != nil {
		return "", "", err
	}

	userPrompt, err = loadPrompt("templates/answer_user.md", map[string]string{
		"Question": question,
		"Context":  context,
	})
	if err != nil {
		return "", "", err
	}

	return systemPrompt, userPrompt, nil
}

// RenderAgentSystemPrompt builds the system prompt for the conversational
// agent, carrying the retrieved context for the current turn.
func RenderAgentSystemPrompt(tenant, context string) (string, error) {
	return loadPrompt("templates/agent_system.md", map[string]string{
		"Tenant":  tenant,
		"Context": context,
	})
}
