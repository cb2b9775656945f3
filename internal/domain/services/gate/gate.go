package gate

import (
	"context"

	"community-console-service/internal/domain/models"
	"community-console-service/internal/domain/services/linkage"
	"community-console-service/internal/domain/session"
	"community-console-service/internal/infrastructure/metrics"
)

// State 页面访问状态
type State string

const (
	StateChecking      State = "CHECKING"
	StateAllowed       State = "ALLOWED"
	StateRedirect      State = "REDIRECT"
	StateBlockedPrompt State = "BLOCKED_PROMPT"
)

// 给用户看的提示
const (
	deniedNotice  = "您没有访问该页面的权限"
	profileNotice = "请先完善个人档案后再继续"
)

// PromptAction 阻断弹窗上的操作
type PromptAction struct {
	Label  string `json:"label"`
	Target string `json:"target"`
}

// Prompt 阻断弹窗，不可关闭
type Prompt struct {
	Message     string         `json:"message"`
	Dismissable bool           `json:"dismissable"`
	Actions     []PromptAction `json:"actions"`
}

// Decision 一次访问判定的最终结果
type Decision struct {
	Route  string  `json:"route"`
	State  State   `json:"state"`
	Target string  `json:"target,omitempty"`
	Notice string  `json:"notice,omitempty"`
	Prompt *Prompt `json:"prompt,omitempty"`

	// Chain 检查个人档案时解析出的结果，页面可以直接使用，无需再次请求
	Chain *linkage.Chain `json:"-"`
}

// Allowed 是否可以渲染页面内容
func (d Decision) Allowed() bool { return d.State == StateAllowed }

// ProfileResolver 解析身份关联的居民和户口，失败时返回空链
type ProfileResolver interface {
	ResolveChain(ctx context.Context, token string, identity *models.Identity) linkage.Chain
}

// Observer 每进入一个状态回调一次
type Observer func(route string, state State)

// Option 配置 Gate
type Option func(*Gate)

// WithObserver 设置状态观察者
func WithObserver(o Observer) Option {
	return func(g *Gate) { g.observer = o }
}

// Gate 页面访问控制
type Gate struct {
	policies []Policy
	profiles ProfileResolver
	observer Observer
}

// New 创建访问控制，policies 为空时使用 DefaultPolicies
func New(profiles ProfileResolver, policies []Policy, opts ...Option) *Gate {
	if len(policies) == 0 {
		policies = DefaultPolicies()
	}
	g := &Gate{policies: policies, profiles: profiles}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// PolicyFor 取最长前缀匹配的策略，没有匹配时使用需要登录的默认策略
func (g *Gate) PolicyFor(path string) Policy {
	best := rootPolicy
	found := false
	for _, p := range g.policies {
		if p.matches(path) && (!found || len(p.Path) > len(best.Path)) {
			best = p
			found = true
		}
	}
	return best
}

// EvaluatePath 判定访问某个页面路径
func (g *Gate) EvaluatePath(ctx context.Context, sess *session.Session, path string) Decision {
	return g.Evaluate(ctx, sess, path, g.PolicyFor(path))
}

// Evaluate 依次检查登录、角色/权限、个人档案
func (g *Gate) Evaluate(ctx context.Context, sess *session.Session, route string, p Policy) Decision {
	g.enter(route, StateChecking)
	d := g.decide(ctx, sess, route, p)
	g.enter(route, d.State)
	metrics.GateDecisions.WithLabelValues(p.Path, string(d.State)).Inc()
	return d
}

func (g *Gate) decide(ctx context.Context, sess *session.Session, route string, p Policy) Decision {
	if !p.requiresSession() {
		return Decision{Route: route, State: StateAllowed}
	}

	if !sess.Authenticated() {
		return Decision{Route: route, State: StateRedirect, Target: SignInPath}
	}

	if len(p.Roles) > 0 && !sess.HasAnyRole(p.Roles...) {
		return denied(route)
	}
	if p.Capability != "" && !sess.HasCapability(p.Capability) {
		return denied(route)
	}

	if p.ProfileRequired {
		identity, _ := sess.GetIdentity()
		// 解析失败时 ResolveChain 已记录日志并返回空链，按未完善处理
		chain := g.profiles.ResolveChain(ctx, sess.Token, identity)
		if !chain.HasProfile() {
			return blocked(route)
		}
		return Decision{Route: route, State: StateAllowed, Chain: &chain}
	}

	return Decision{Route: route, State: StateAllowed}
}

func (g *Gate) enter(route string, s State) {
	if g.observer != nil {
		g.observer(route, s)
	}
}

func denied(route string) Decision {
	return Decision{Route: route, State: StateRedirect, Target: DashboardPath, Notice: deniedNotice}
}

func blocked(route string) Decision {
	return Decision{
		Route: route,
		State: StateBlockedPrompt,
		Prompt: &Prompt{
			Message:     profileNotice,
			Dismissable: false,
			Actions:     []PromptAction{{Label: "完善个人档案", Target: ProfileSetupPath}},
		},
	}
}
