package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"device-inspector/internal/domain/entity"
	"device-inspector/internal/domain/port"
)

// SQSAPI часть клиента SQS, которая нужна издателю
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher отправляет уведомления об осмотрах в очередь SQS.
type SQSPublisher struct {
	client   SQSAPI
	queueURL string
}

func NewSQSPublisher(client SQSAPI, queueURL string) *SQSPublisher {
	return &SQSPublisher{client: client, queueURL: queueURL}
}

// Publish отправляет уведомление с оценкой в атрибутах сообщения.
func (p *SQSPublisher) Publish(ctx context.Context, result *entity.InspectionResult) error {
	body, err := json.Marshal(EventFromResult(result))
	if err != nil {
		return fmt.Errorf("marshal inspection event: %w", err)
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"grade": {
				DataType:    aws.String("String"),
				StringValue: aws.String(result.Grade.String()),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sqs SendMessage: %w", err)
	}
	return nil
}

var _ port.ResultPublisher = (*SQSPublisher)(nil)
