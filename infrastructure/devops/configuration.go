package devops

import (
	"context"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"faceclock.com/faceclock/recognition"
)

var (
	once       sync.Once
	thresholds recognition.Config
	loadErr    error
)

// LoadRecognitionConfig reads the matching thresholds from the
// "faceclock/recognition" SSM parameter, a yaml document with the same
// fields as recognition.Config. Fields the parameter omits keep their
// defaults. The parameter is read once per process.
func LoadRecognitionConfig(ctx context.Context) (recognition.Config, error) {
	once.Do(func() {
		paramName := "faceclock/recognition"
		thresholds = recognition.DefaultConfig()

		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			loadErr = fmt.Errorf("load aws config: %w", err)
			return
		}

		client := ssm.NewFromConfig(cfg)

		out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           aws.String(paramName),
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			loadErr = fmt.Errorf("get parameter: %w", err)
			return
		}

		if err := yaml.Unmarshal([]byte(*out.Parameter.Value), &thresholds); err != nil {
			loadErr = fmt.Errorf("unmarshal yaml: %w", err)
			return
		}
	})

	return thresholds, loadErr
}
