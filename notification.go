package s3rest

import (
	"bytes"
	"encoding/xml"
)

var xmlContentHeader = []byte("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")

// TopicConfiguration publishes the configured events to an SNS compatible topic.
type TopicConfiguration struct {
	ID       string   `xml:"Id,omitempty"`
	TopicArn string   `xml:"Topic"`
	Events   []string `xml:"Event"`
}

// QueueConfiguration publishes the configured events to an SQS compatible queue.
type QueueConfiguration struct {
	ID       string   `xml:"Id,omitempty"`
	QueueArn string   `xml:"Queue"`
	Events   []string `xml:"Event"`
}

// CloudFunctionConfiguration invokes a function for the configured events.
type CloudFunctionConfiguration struct {
	ID               string   `xml:"Id,omitempty"`
	CloudFunctionArn string   `xml:"CloudFunction"`
	Events           []string `xml:"Event"`
}

// NotificationConfiguration is the bucket notification document.
// An empty configuration removes all notifications from the bucket.
type NotificationConfiguration struct {
	XMLName        xml.Name                     `xml:"NotificationConfiguration"`
	Xmlns          string                       `xml:"xmlns,attr"`
	Topics         []TopicConfiguration         `xml:"TopicConfiguration,omitempty"`
	Queues         []QueueConfiguration         `xml:"QueueConfiguration,omitempty"`
	CloudFunctions []CloudFunctionConfiguration `xml:"CloudFunctionConfiguration,omitempty"`
}

// Encode renders the configuration as an XML document.
func (n NotificationConfiguration) Encode() ([]byte, error) {
	if n.Xmlns == "" {
		n.Xmlns = S3XMLNamespace
	}

	var b bytes.Buffer
	b.Write(xmlContentHeader)

	enc := xml.NewEncoder(&b)
	enc.Indent("", "  ")

	if err := enc.Encode(&n); err != nil {
		return nil, &Error{
			Stage:   InvalidRequestSpec,
			Message: "cannot XML encode the notification configuration",
			Cause:   err,
		}
	}

	return b.Bytes(), nil
}

// PutBucketNotification builds the request that replaces the notification
// configuration of a bucket. The payload is signed.
func PutBucketNotification(bucket string, configuration NotificationConfiguration) (*RequestSpec, error) {
	body, err := configuration.Encode()
	if err != nil {
		return nil, err
	}

	return &RequestSpec{
		Method: "PUT",
		Bucket: bucket,
		Query: map[string]string{
			"notification": "",
		},
		Payload:     InlinePayload(body),
		SignPayload: true,
	}, nil
}

// GetBucketNotification builds the request that reads the notification
// configuration of a bucket.
func GetBucketNotification(bucket string) *RequestSpec {
	return &RequestSpec{
		Method: "GET",
		Bucket: bucket,
		Query: map[string]string{
			"notification": "",
		},
	}
}
