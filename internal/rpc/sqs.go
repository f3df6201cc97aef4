package rpc

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// ServeSqs polls the request queue, dispatches each message body as a
// protocol request and sends the response to the response queue. A
// message is deleted only after its response was sent, so a crashed
// worker leaves the request visible for redelivery.
func ServeSqs(ctx context.Context, client *sqs.Client, reqQueueUrl string, respQueueUrl string, disp *Dispatcher, log *slog.Logger) error {
	log.Info("serving judge requests over SQS", "request_queue", reqQueueUrl, "response_queue", respQueueUrl)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		output, err := client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(reqQueueUrl),
			MaxNumberOfMessages: 1,
			WaitTimeSeconds:     5,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Warn("failed to receive messages", "error", err)
			time.Sleep(1 * time.Second)
			continue
		}

		for _, message := range output.Messages {
			if message.Body == nil {
				continue
			}

			resp := disp.Handle(ctx, []byte(*message.Body))
			b, err := json.Marshal(resp)
			if err != nil {
				log.Error("failed to marshal response", "error", err)
				continue
			}

			_, err = client.SendMessage(ctx, &sqs.SendMessageInput{
				QueueUrl:    aws.String(respQueueUrl),
				MessageBody: aws.String(string(b)),
			})
			if err != nil {
				log.Warn("failed to send response", "error", err)
				continue
			}

			_, err = client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      aws.String(reqQueueUrl),
				ReceiptHandle: message.ReceiptHandle,
			})
			if err != nil {
				log.Warn("failed to delete message", "error", err)
			}
		}
	}
}
