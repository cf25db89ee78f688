/*
Copyright 2025 Coopledger Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package coopledger

import (
	"embed"
	"fmt"

	"github.com/coopledger/coopledger/config"
	"github.com/coopledger/coopledger/database"
	redis_db "github.com/coopledger/coopledger/internal/redis-db"
	"github.com/redis/go-redis/v9"
)

//go:embed sql/*.sql
var SQLFiles embed.FS

// Coopledger is the ledger engine. It owns the datasource and the redis
// client used to serialize posting.
type Coopledger struct {
	datasource database.IDataSource
	redis      redis.UniversalClient
}

// NewCoopledger initializes the engine with the provided datasource. It
// fetches the configuration and connects the redis client used for posting
// locks.
//
// Parameters:
// - db database.IDataSource: The datasource for ledger operations.
//
// Returns:
// - *Coopledger: A pointer to the newly created engine.
// - error: An error if configuration or redis initialization fails.
func NewCoopledger(db database.IDataSource) (*Coopledger, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	redisClient, err := redis_db.NewRedisClient([]string{fmt.Sprintf("redis://%s", configuration.Redis.Dns)})
	if err != nil {
		return nil, err
	}
	return &Coopledger{datasource: db, redis: redisClient.Client()}, nil
}
