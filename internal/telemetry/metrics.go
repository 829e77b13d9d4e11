package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuizzesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quli",
		Name:      "quizzes_generated_total",
		Help:      "Number of quizzes generated and stored.",
	})

	GenerationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quli",
		Name:      "generation_failures_total",
		Help:      "Number of failed quiz generations.",
	})

	GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "quli",
		Name:      "generation_duration_seconds",
		Help:      "Time spent generating a quiz.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
	})

	AnswersGraded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quli",
		Name:      "answers_graded_total",
		Help:      "Number of graded answers by verdict.",
	}, []string{"verdict"})

	ResultsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quli",
		Name:      "results_submitted_total",
		Help:      "Number of stored quiz results.",
	})

	ResultScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "quli",
		Name:      "result_score_percent",
		Help:      "Distribution of submitted scores.",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	})
)

// ObserveAnswer counts one graded answer.
func ObserveAnswer(correct bool) {
	verdict := "incorrect"
	if correct {
		verdict = "correct"
	}
	AnswersGraded.WithLabelValues(verdict).Inc()
}
