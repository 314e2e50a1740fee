package extract

import "github.com/chromedp/cdproto/network"

// BlockPolicy is a declarative allow/deny decision over resource types,
// evaluated once per intercepted request. Blocking non-textual subresources
// cuts render cost and shrinks the failure surface.
type BlockPolicy struct {
	denied map[network.ResourceType]struct{}
}

// DefaultBlockPolicy denies images, stylesheets, fonts, and media.
func DefaultBlockPolicy() *BlockPolicy {
	return NewBlockPolicy(
		network.ResourceTypeImage,
		network.ResourceTypeStylesheet,
		network.ResourceTypeFont,
		network.ResourceTypeMedia,
	)
}

// NewBlockPolicy builds a policy denying exactly the given resource types.
func NewBlockPolicy(denied ...network.ResourceType) *BlockPolicy {
	p := &BlockPolicy{denied: make(map[network.ResourceType]struct{}, len(denied))}
	for _, rt := range denied {
		p.denied[rt] = struct{}{}
	}
	return p
}

// Allow reports whether a request of the given resource type may proceed.
func (p *BlockPolicy) Allow(rt network.ResourceType) bool {
	if p == nil {
		return true
	}
	_, blocked := p.denied[rt]
	return !blocked
}
