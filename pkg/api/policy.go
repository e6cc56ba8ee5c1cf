package api

import (
	"context"

	"github.com/odvcencio/ember/pkg/views"
)

// PolicyAdapter feeds the push worker the notification policy view for a
// user, built from that user's live context.
type PolicyAdapter struct {
	engines  EngineProvider
	composer *views.Composer
}

// NewPolicyAdapter wires engines and the view composer into a policy source.
func NewPolicyAdapter(engines EngineProvider, composer *views.Composer) *PolicyAdapter {
	return &PolicyAdapter{engines: engines, composer: composer}
}

func (p *PolicyAdapter) PolicyFor(ctx context.Context, userID string) (views.NotificationPolicyView, error) {
	engine, err := p.engines.EngineFor(userID)
	if err != nil {
		return views.NotificationPolicyView{}, err
	}
	return p.composer.NotificationPolicy(userID, engine.CurrentContext(ctx))
}
