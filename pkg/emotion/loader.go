package emotion

import (
	"github.com/okabe-dev/facemood/internal/log"
)

// Load resolves the classifier backend once, at startup. If the DNN
// model cannot be loaded the pipeline runs on the neutral stub instead
// of failing; the choice is never revisited at runtime.
func Load(cfg Config) Classifier {
	dnn, err := NewDNN(cfg)
	if err != nil {
		log.Warn("emotion model unavailable, using stub classifier",
			"model", cfg.ModelPath, "error", err)
		return Stub{}
	}

	log.Info("emotion classifier loaded", "model", cfg.ModelPath)
	return dnn
}
