// Package jobs moves best-effort work off the request path through a Redis
// backed queue consumed by an independent worker. The producer only
// guarantees enqueue success, never delivery.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mpurcell/contentapi/utils"
)

const welcomeQueueKey = "jobs:welcome_email"

// WelcomeEmailJob is the payload enqueued after a successful registration.
type WelcomeEmailJob struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// EnqueueWelcomeEmail pushes a welcome notification onto the queue.
func EnqueueWelcomeEmail(email, name string) error {
	b, err := json.Marshal(WelcomeEmailJob{Email: email, Name: name})
	if err != nil {
		return err
	}
	rc := utils.GetRedis()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return rc.LPush(ctx, welcomeQueueKey, b).Err()
}

// StartWorker launches a goroutine that drains the welcome email queue
// until ctx is cancelled. Delivery failures are logged and the job dropped;
// the originating request never observes them.
func StartWorker(ctx context.Context) {
	go func() {
		rc := utils.GetRedis()
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			res, err := rc.BRPop(ctx, 5*time.Second, welcomeQueueKey).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					utils.Sugar.Warnf("welcome email queue pop failed: %v", err)
					time.Sleep(time.Second)
				}
				continue
			}
			// BRPop returns [key, value]
			if len(res) != 2 {
				continue
			}

			var job WelcomeEmailJob
			if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
				utils.Sugar.Warnf("welcome email job decode failed: %v", err)
				continue
			}
			if err := deliver(job); err != nil {
				utils.Sugar.Warnf("welcome email delivery failed for %s: %v", job.Email, err)
			}
		}
	}()
}

func deliver(job WelcomeEmailJob) error {
	subject := "Welcome aboard!"
	body := fmt.Sprintf("Hi %s,\n\nThanks for registering. Your account is ready to use.\n", job.Name)
	return utils.SendMail(job.Email, subject, body)
}
