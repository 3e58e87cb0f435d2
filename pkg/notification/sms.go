package notification

import (
	"context"
	"errors"
	"fmt"

	"FoodShare-Backend/entities"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// maxSMSLength keeps a message within a single SMS segment.
const maxSMSLength = 160

// SNSPublisher is the subset of the SNS client the SMS channel uses.
type SNSPublisher interface {
	Publish(ctx context.Context, params *awssns.PublishInput, optFns ...func(*awssns.Options)) (*awssns.PublishOutput, error)
}

type SMSChannel struct {
	client   SNSPublisher
	senderID string
}

func NewSMSChannel(client SNSPublisher, senderID string) *SMSChannel {
	return &SMSChannel{client: client, senderID: senderID}
}

func (c *SMSChannel) Name() string { return entities.ChannelSMS }

func (c *SMSChannel) Send(ctx context.Context, target Target, msg Message) error {
	if target.Phone == "" {
		return errors.New("target has no phone number")
	}

	text := msg.Body
	if msg.Urgent {
		text = "URGENT: " + text
	}
	if len(text) > maxSMSLength {
		text = text[:maxSMSLength-3] + "..."
	}

	attrs := map[string]snstypes.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    aws.String("String"),
			StringValue: aws.String("Transactional"),
		},
	}
	if c.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = snstypes.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(c.senderID),
		}
	}

	_, err := c.client.Publish(ctx, &awssns.PublishInput{
		PhoneNumber:       aws.String(target.Phone),
		Message:           aws.String(text),
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
