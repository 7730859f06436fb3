package chat

import (
	"fullhouse_client/platform/config"
	"fullhouse_client/platform/logger"
)

// Factory builds collectors that share one analyzer, script and policy set.
type Factory struct {
	analyzer Analyzer
	base     Options
}

// NewFactory resolves the chat configuration once. A configured script path
// must load; otherwise the default script is used.
func NewFactory(analyzer Analyzer, cfg config.ChatConfig, pub Publisher, log *logger.Logger) (*Factory, error) {
	script := DefaultScript()
	if path := cfg.GetChatScriptPath(); path != "" {
		loaded, err := LoadScript(path)
		if err != nil {
			return nil, err
		}
		script = loaded
	}

	return &Factory{
		analyzer: analyzer,
		base: Options{
			Script:            script,
			Ordering:          Ordering(cfg.GetChatOrdering()),
			Matcher:           NewBoolMatcher(cfg.GetChatBooleanMode(), cfg.GetChatAffirmatives()),
			Timeout:           cfg.GetChatTimeout(),
			MinSubmitInterval: cfg.GetChatMinSubmitInterval(),
			Publisher:         pub,
			Log:               log,
		},
	}, nil
}

// New starts a collector for sessionID on behalf of contactKey.
func (f *Factory) New(sessionID, contactKey string) *Collector {
	opts := f.base
	opts.SessionID = sessionID
	opts.ContactKey = contactKey
	return NewCollector(f.analyzer, opts)
}

// Script returns the script every collector uses.
func (f *Factory) Script() *Script {
	return f.base.Script
}
