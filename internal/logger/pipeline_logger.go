// Package logger provides pipeline-specific logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// PipelineLogger provides dedicated logging for feature pipeline stages.
type PipelineLogger struct {
	*logrus.Entry
}

// NewPipelineLogger creates a new pipeline logger.
func NewPipelineLogger(baseLogger *logrus.Logger) *PipelineLogger {
	return &PipelineLogger{
		Entry: baseLogger.WithField("component", "pipeline"),
	}
}

// LogStageCompleted logs completion of a pipeline stage.
func (pl *PipelineLogger) LogStageCompleted(stage string, rowsIn, rowsOut int, duration time.Duration) {
	pl.WithFields(logrus.Fields{
		"stage":       stage,
		"rows_in":     rowsIn,
		"rows_out":    rowsOut,
		"duration_ms": float64(duration.Microseconds()) / 1000.0,
	}).Info("Pipeline stage completed")
}

// LogEncodingFitted logs a freshly fitted label encoding set.
func (pl *PipelineLogger) LogEncodingFitted(version string, cardinalities map[string]int) {
	pl.WithFields(logrus.Fields{
		"encoding_version": version,
		"cardinalities":    cardinalities,
	}).Info("Label encoding fitted")
}

// LogUnseenCategory logs a row skipped due to a category missing from the encoding.
func (pl *PipelineLogger) LogUnseenCategory(column, category string, season int) {
	pl.WithFields(logrus.Fields{
		"column":   column,
		"category": category,
		"season":   season,
	}).Warn("Unseen category, row skipped")
}

// LogRunCompleted logs a finished pipeline run.
func (pl *PipelineLogger) LogRunCompleted(runID string, status string, trainingRows, holdoutRows int, duration time.Duration) {
	pl.WithFields(logrus.Fields{
		"run_id":        runID,
		"status":        status,
		"training_rows": trainingRows,
		"holdout_rows":  holdoutRows,
		"duration_s":    duration.Seconds(),
	}).Info("Pipeline run completed")
}

// LogRunFailed logs a failed pipeline run.
func (pl *PipelineLogger) LogRunFailed(runID string, stage string, errorReason string) {
	pl.WithFields(logrus.Fields{
		"run_id": runID,
		"stage":  stage,
		"reason": errorReason,
	}).Error("Pipeline run failed")
}
