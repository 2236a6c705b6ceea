// internal/events/sns.go
package events

import (
	"context"

	commonaws "agrimatch/internal/common/aws"
)

// SNSPublisher delivers task events to an SNS topic.
type SNSPublisher struct {
	client   *commonaws.SNSClient
	topicARN string
}

func NewSNSPublisher(ctx context.Context, region, topicARN string) (*SNSPublisher, error) {
	client, err := commonaws.NewSNSClient(ctx, region)
	if err != nil {
		return nil, err
	}
	return &SNSPublisher{client: client, topicARN: topicARN}, nil
}

func (p *SNSPublisher) PublishTaskEvent(ctx context.Context, event TaskEvent) error {
	return p.client.PublishJSON(ctx, p.topicARN, event)
}
