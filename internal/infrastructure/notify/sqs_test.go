package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/require"

	"device-inspector/internal/domain/entity"
)

type fakeSQS struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestSQSPublisher_Publish(t *testing.T) {
	fake := &fakeSQS{}
	pub := NewSQSPublisher(fake, "https://sqs.local/queue")

	require.NoError(t, pub.Publish(context.Background(), sampleResult()))
	require.Equal(t, "https://sqs.local/queue", aws.ToString(fake.input.QueueUrl))
	require.Equal(t, "B", aws.ToString(fake.input.MessageAttributes["grade"].StringValue))

	var event InspectionEvent
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(fake.input.MessageBody)), &event))
	require.Equal(t, "abc", event.ID)
	require.Equal(t, entity.GradeB, event.Grade)
}

func TestSQSPublisher_Error(t *testing.T) {
	cause := errors.New("access denied")
	pub := NewSQSPublisher(&fakeSQS{err: cause}, "q")
	require.ErrorIs(t, pub.Publish(context.Background(), sampleResult()), cause)
}

func TestMultiPublisher(t *testing.T) {
	cause := errors.New("boom")
	ok := &fakeSQS{}
	failing := NewSQSPublisher(&fakeSQS{err: cause}, "q")

	multi := MultiPublisher{NewSQSPublisher(ok, "q"), failing}
	err := multi.Publish(context.Background(), sampleResult())
	require.ErrorIs(t, err, cause)
	require.NotNil(t, ok.input)

	require.NoError(t, MultiPublisher(nil).Publish(context.Background(), sampleResult()))
}
