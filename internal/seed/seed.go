// Package seed loads the sample projects a fresh installation starts with.
package seed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"chronology/internal/model"
	"chronology/internal/store"
)

// Apply inserts the sample projects when the store holds no projects.
// It reports whether anything was inserted.
func Apply(ctx context.Context, s store.Store, logger *zap.Logger) (bool, error) {
	n, err := s.CountProjects(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count projects: %w", err)
	}
	if n > 0 {
		logger.Debug("Skipping seed, projects exist", zap.Int("projects", n))
		return false, nil
	}

	projects := Projects()
	for _, p := range projects {
		if err := s.CreateProject(ctx, p); err != nil {
			return false, fmt.Errorf("failed to seed project %s: %w", p.ID, err)
		}
		for _, r := range p.Records {
			if err := s.CreateRecord(ctx, r); err != nil {
				return false, fmt.Errorf("failed to seed record %s: %w", r.ID, err)
			}
		}
	}
	logger.Info("Seeded sample data", zap.Int("projects", len(projects)))
	return true, nil
}

type row struct {
	modelName                        string
	date                             string
	acc, loss, prec, recall, f1Score float64
}

// Projects returns the sample projects with their records.
func Projects() []model.Project {
	return []model.Project{
		project("1", "Image Classification Model",
			"CNN model for image classification using ResNet architecture",
			"2024-01-01", "2024-06-30", "hsl(200, 100%, 50%)", []row{
				{"ResNet-50", "2024-01-01", 0.75, 0.65, 0.73, 0.72, 0.725},
				{"ResNet-50", "2024-02-01", 0.82, 0.48, 0.80, 0.79, 0.795},
				{"ResNet-50", "2024-03-01", 0.87, 0.35, 0.85, 0.84, 0.845},
				{"EfficientNet-B0", "2024-01-15", 0.78, 0.58, 0.76, 0.75, 0.755},
				{"EfficientNet-B0", "2024-02-15", 0.85, 0.42, 0.83, 0.82, 0.825},
				{"EfficientNet-B0", "2024-03-15", 0.90, 0.32, 0.88, 0.87, 0.875},
				{"Vision Transformer", "2024-02-01", 0.80, 0.52, 0.78, 0.77, 0.775},
				{"Vision Transformer", "2024-03-01", 0.88, 0.38, 0.86, 0.85, 0.855},
				{"Vision Transformer", "2024-04-01", 0.93, 0.25, 0.91, 0.90, 0.905},
			}),
		project("2", "NLP Sentiment Analysis",
			"Transformer-based models for sentiment analysis on social media data",
			"2024-02-15", "2024-06-30", "hsl(120, 100%, 40%)", []row{
				{"BERT-base", "2024-02-15", 0.68, 0.78, 0.65, 0.67, 0.66},
				{"BERT-base", "2024-03-15", 0.76, 0.58, 0.74, 0.75, 0.745},
				{"BERT-base", "2024-04-15", 0.83, 0.42, 0.81, 0.82, 0.815},
				{"RoBERTa-base", "2024-03-01", 0.72, 0.65, 0.70, 0.71, 0.705},
				{"RoBERTa-base", "2024-04-01", 0.79, 0.48, 0.77, 0.78, 0.775},
				{"RoBERTa-base", "2024-05-01", 0.86, 0.35, 0.84, 0.85, 0.845},
				{"DistilBERT", "2024-03-15", 0.70, 0.68, 0.68, 0.69, 0.685},
				{"DistilBERT", "2024-04-15", 0.77, 0.52, 0.75, 0.76, 0.755},
				{"DistilBERT", "2024-05-15", 0.84, 0.38, 0.82, 0.83, 0.825},
			}),
		project("3", "Time Series Forecasting",
			"Various models for stock price prediction",
			"2024-03-01", "2024-06-30", "hsl(300, 100%, 50%)", []row{
				{"LSTM", "2024-03-01", 0.62, 0.85, 0.60, 0.63, 0.615},
				{"LSTM", "2024-04-01", 0.71, 0.68, 0.69, 0.72, 0.705},
				{"LSTM", "2024-05-01", 0.78, 0.52, 0.76, 0.79, 0.775},
				{"GRU", "2024-03-15", 0.65, 0.78, 0.63, 0.66, 0.645},
				{"GRU", "2024-04-15", 0.73, 0.62, 0.71, 0.74, 0.725},
				{"GRU", "2024-05-15", 0.80, 0.48, 0.78, 0.81, 0.795},
				{"Transformer", "2024-04-01", 0.69, 0.72, 0.67, 0.70, 0.685},
				{"Transformer", "2024-05-01", 0.76, 0.55, 0.74, 0.77, 0.755},
				{"Transformer", "2024-06-01", 0.83, 0.42, 0.81, 0.84, 0.825},
			}),
	}
}

func project(id, name, description, created, updated, color string, rows []row) model.Project {
	p := model.Project{
		ID:            id,
		Name:          name,
		Description:   description,
		CreatedAt:     day(created),
		UpdatedAt:     day(updated),
		Color:         color,
		MetricsConfig: model.DefaultMetricsConfig(),
	}
	for i, r := range rows {
		p.Records = append(p.Records, model.MetricRecord{
			ID:        fmt.Sprintf("%s-%d", id, i+1),
			ProjectID: id,
			Timestamp: day(r.date),
			ModelName: r.modelName,
			Accuracy:  model.Float(r.acc),
			Loss:      model.Float(r.loss),
			Precision: model.Float(r.prec),
			Recall:    model.Float(r.recall),
			F1Score:   model.Float(r.f1Score),
		})
	}
	return p
}

func day(s string) model.Timestamp {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(fmt.Sprintf("seed: bad date %q", s))
	}
	return model.NewTimestamp(t)
}
