package agentcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/agent"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/db"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/indexer"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/llm"
	"github.com/hiroshiyamaguchi0515-hue/Insurance-AI/memory"
	"go.uber.org/zap"
)

type entry struct {
	agent     *agent.Agent
	createdAt time.Time
	lastUsed  time.Time
}

// AgentInfo is a read-only snapshot of one cached agent.
type AgentInfo struct {
	Tenant    string    `json:"tenant"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"createdAt"`
	LastUsed  time.Time `json:"lastUsed"`
}

// Manager owns the tenant -> agent mapping. Entries expire ttl after
// their last use and are rebuilt lazily; the map lock only covers
// lookup and construction, never question answering.
type Manager struct {
	mu            sync.Mutex
	entries       map[string]*entry
	ttl           time.Duration
	syncer        *indexer.Synchronizer
	clients       llm.Factory
	conversations *memory.ConversationManager
	now           func() time.Time
}

// ProvideManager builds the cache. conversations may be nil, in which
// case dialogue buffers start empty instead of being restored.
func ProvideManager(syncer *indexer.Synchronizer, clients llm.Factory, ttl time.Duration, conversations *memory.ConversationManager) *Manager {
	return &Manager{
		entries:       make(map[string]*entry),
		ttl:           ttl,
		syncer:        syncer,
		clients:       clients,
		conversations: conversations,
		now:           time.Now,
	}
}

// GetOrCreate returns the cached agent for the company, building one if
// absent or expired. Construction syncs the tenant's index first, so a
// returned agent always retrieves from a current index.
func (m *Manager) GetOrCreate(ctx context.Context, company *db.CompanyModel) (*agent.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if e, ok := m.entries[company.Name]; ok {
		if now.Sub(e.lastUsed) < m.ttl {
			e.lastUsed = now
			return e.agent, nil
		}
		delete(m.entries, company.Name)
	}

	m.sweepLocked(now)

	a, err := m.build(ctx, company)
	if err != nil {
		return nil, err
	}

	m.entries[company.Name] = &entry{agent: a, createdAt: now, lastUsed: now}
	logger.Info("Created agent", zap.String("tenant", company.Name), zap.String("model", company.ModelName))
	return a, nil
}

// ForceRemove evicts the tenant's agent regardless of TTL.
func (m *Manager) ForceRemove(tenant string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[tenant]; ok {
		delete(m.entries, tenant)
		logger.Info("Removed agent", zap.String("tenant", tenant))
	}
}

// ForceUpdate evicts and immediately rebuilds the tenant's agent. Used
// after uploads and deletes, when the backing index has changed under
// a cached agent.
func (m *Manager) ForceUpdate(ctx context.Context, company *db.CompanyModel) (*agent.Agent, error) {
	m.ForceRemove(company.Name)
	return m.GetOrCreate(ctx, company)
}

// Has reports whether an agent is currently cached for the tenant.
func (m *Manager) Has(tenant string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[tenant]
	return ok
}

// ResetMemory clears the dialogue buffer of the tenant's cached agent.
// Returns false if no agent is cached.
func (m *Manager) ResetMemory(tenant string) bool {
	m.mu.Lock()
	e, ok := m.entries[tenant]
	m.mu.Unlock()

	if !ok {
		return false
	}
	e.agent.ResetMemory()
	return true
}

// List snapshots the currently cached agents.
func (m *Manager) List() []AgentInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	infos := make([]AgentInfo, 0, len(m.entries))
	for tenant, e := range m.entries {
		infos = append(infos, AgentInfo{
			Tenant:    tenant,
			Model:     e.agent.Model(),
			CreatedAt: e.createdAt,
			LastUsed:  e.lastUsed,
		})
	}
	return infos
}

func (m *Manager) build(ctx context.Context, company *db.CompanyModel) (*agent.Agent, error) {
	if err := validate(company); err != nil {
		return nil, err
	}
	if m.clients == nil {
		return nil, fmt.Errorf("no generation provider configured for company %q", company.Name)
	}

	index, err := m.syncer.Sync(ctx, company.Name, indexer.WithOCR(company.UseOCR))
	if err != nil {
		return nil, fmt.Errorf("cannot build agent for %q: %w", company.Name, err)
	}

	builder := agent.NewAgentBuilder().
		WithTenant(company.Name).
		WithClient(m.clients(company.ModelName)).
		WithRetriever(index).
		WithTemperature(company.Temperature).
		WithMaxTokens(company.MaxTokens)

	if m.conversations != nil {
		builder.WithConversation(m.conversations.LoadConversation(ctx, company.Name))
	}

	return builder.Build(), nil
}

// sweepLocked drops every expired entry. Best effort bound on map
// growth, called whenever a new entry is about to be created.
func (m *Manager) sweepLocked(now time.Time) {
	for tenant, e := range m.entries {
		if now.Sub(e.lastUsed) >= m.ttl {
			delete(m.entries, tenant)
			logger.Info("Evicted expired agent", zap.String("tenant", tenant))
		}
	}
}

func validate(company *db.CompanyModel) error {
	if company.ModelName == "" {
		return fmt.Errorf("company %q has no generation model configured", company.Name)
	}
	if company.Temperature < 0 || company.Temperature > 2 {
		return fmt.Errorf("company %q has temperature %v outside [0, 2]", company.Name, company.Temperature)
	}
	return nil
}
