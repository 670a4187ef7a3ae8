package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestAskRejectsEmptyQuestion(t *testing.T) {
	e := newTestEnv(t)
	e.createCompany(t, "acme")

	_, err := e.qa.Ask(context.Background(), &AskRequest{Company: "acme", Question: "  "})
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestAskUnknownCompany(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.qa.Ask(context.Background(), &AskRequest{Company: "ghost", Question: "hello?"})
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestAskWithoutDocuments(t *testing.T) {
	e := newTestEnv(t)
	e.createCompany(t, "acme")

	resp, err := e.qa.Ask(context.Background(), &AskRequest{Company: "acme", Question: "What is covered?"})
	require.NoError(t, err)
	assert.Equal(t, noDocumentsAnswer, resp.Answer)
	assert.Empty(t, resp.Sources)
}

func TestAskAnswersAndLogs(t *testing.T) {
	e := newTestEnv(t)
	e.createCompany(t, "acme")
	e.uploadPDF(t, "acme", "policy.pdf")

	resp, err := e.qa.Ask(context.Background(), &AskRequest{Company: "acme", Question: "What is covered?"})
	require.NoError(t, err)
	assert.Equal(t, "Generated answer.", resp.Answer)
	assert.Equal(t, []string{"policy.pdf"}, resp.Sources)
	assert.Equal(t, "gpt-4o", resp.Model)

	require.Len(t, e.logs.qaLogs, 1)
	assert.Equal(t, "acme", e.logs.qaLogs[0].Company)
	assert.Equal(t, "What is covered?", e.logs.qaLogs[0].Question)
	assert.NotEmpty(t, e.logs.qaLogs[0].LogID)
}

func TestAskSyncsNewFilesBeforeAnswering(t *testing.T) {
	e := newTestEnv(t)
	e.createCompany(t, "acme")
	e.uploadPDF(t, "acme", "policy.pdf")
	e.uploadPDF(t, "acme", "addendum.pdf")

	resp, err := e.qa.Ask(context.Background(), &AskRequest{Company: "acme", Question: "What changed?"})
	require.NoError(t, err)
	assert.Len(t, resp.Sources, 2)
	assert.Equal(t, 1, e.extractor.calls["policy.pdf"])
	assert.Equal(t, 1, e.extractor.calls["addendum.pdf"])
}

func TestAskAgentAnswersAndLogs(t *testing.T) {
	e := newTestEnv(t)
	e.createCompany(t, "acme")
	e.uploadPDF(t, "acme", "policy.pdf")

	resp, err := e.qa.AskAgent(context.Background(), &AskRequest{Company: "acme", Question: "What is covered?"})
	require.NoError(t, err)
	assert.Equal(t, "Generated answer.", resp.Answer)
	assert.False(t, resp.FallbackUsed)
	assert.Equal(t, []string{"policy.pdf"}, resp.Sources)

	require.Len(t, e.logs.agentLogs, 1)
	assert.Equal(t, "acme", e.logs.agentLogs[0].Company)
	assert.False(t, e.logs.agentLogs[0].FallbackUsed)
}

func TestAskAgentWithoutDocuments(t *testing.T) {
	e := newTestEnv(t)
	e.createCompany(t, "acme")

	resp, err := e.qa.AskAgent(context.Background(), &AskRequest{Company: "acme", Question: "hello?"})
	require.NoError(t, err)
	assert.Equal(t, noDocumentsAnswer, resp.Answer)
}

func TestResetAgent(t *testing.T) {
	e := newTestEnv(t)
	e.createCompany(t, "acme")
	e.uploadPDF(t, "acme", "policy.pdf")

	err := e.qa.ResetAgent(context.Background(), "acme")
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = e.qa.AskAgent(context.Background(), &AskRequest{Company: "acme", Question: "hello?"})
	require.NoError(t, err)
	assert.NoError(t, e.qa.ResetAgent(context.Background(), "acme"))
}

func TestListAgents(t *testing.T) {
	e := newTestEnv(t)
	e.createCompany(t, "acme")
	e.uploadPDF(t, "acme", "policy.pdf")

	assert.Empty(t, e.qa.ListAgents())

	_, err := e.qa.AskAgent(context.Background(), &AskRequest{Company: "acme", Question: "hello?"})
	require.NoError(t, err)

	agents := e.qa.ListAgents()
	require.Len(t, agents, 1)
	assert.Equal(t, "acme", agents[0].Tenant)
}
