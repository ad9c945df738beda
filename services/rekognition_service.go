package services

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// RekognitionService identifies food in meal photos via AWS Rekognition
// label detection.
type RekognitionService struct {
	client *rekognition.Client
}

func NewRekognitionService(client *rekognition.Client) *RekognitionService {
	return &RekognitionService{client: client}
}

// RecognizeLabels returns up to five labels above 75% confidence for the
// raw image bytes, most confident first.
func (r *RekognitionService) RecognizeLabels(ctx context.Context, imageData []byte) ([]string, error) {
	out, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: imageData},
		MaxLabels:     aws.Int32(5),
		MinConfidence: aws.Float32(75),
	})
	if err != nil {
		return nil, err
	}

	var labels []string
	for _, l := range out.Labels {
		if l.Name != nil {
			labels = append(labels, *l.Name)
		}
	}
	return labels, nil
}
