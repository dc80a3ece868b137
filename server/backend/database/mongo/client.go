/*
 * Copyright 2025 The Polido Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package mongo implements database interfaces using MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	gotime "time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/polido-team/polido/api/types"
	"github.com/polido-team/polido/server/backend/database"
	"github.com/polido-team/polido/server/logging"
)

// Client is a client that connects to Mongo DB and reads or saves Polido data.
type Client struct {
	config *Config
	client *mongo.Client
}

// Dial creates an instance of Client and dials the given MongoDB.
func Dial(conf *Config) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.ParseConnectionTimeout())
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.ConnectionURI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	ctxPing, cancel := context.WithTimeout(ctx, conf.ParsePingTimeout())
	defer cancel()

	if err := client.Ping(ctxPing, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	if err := ensureIndexes(ctx, client.Database(conf.PolidoDatabase)); err != nil {
		return nil, err
	}

	logging.DefaultLogger().Infof("MongoDB connected, URI: %s, DB: %s", conf.ConnectionURI, conf.PolidoDatabase)

	return &Client{
		config: conf,
		client: client,
	}, nil
}

// Close all resources of this client.
func (c *Client) Close() error {
	if err := c.client.Disconnect(context.Background()); err != nil {
		return fmt.Errorf("close mongo client: %w", err)
	}

	return nil
}

// CreateVersionInfo stores the given version snapshot and assigns the next
// sequence number of the policy to it. The unique index on policy_id and seq
// detects racing writers; the loser surfaces ErrVersionConflict.
func (c *Client) CreateVersionInfo(
	ctx context.Context,
	fields *types.VersionFields,
) (*database.VersionInfo, error) {
	seq := int64(1)
	latest, err := c.FindLatestVersionInfo(ctx, fields.PolicyID)
	if err != nil && !errors.Is(err, database.ErrVersionNotFound) {
		return nil, err
	}
	if latest != nil {
		seq = latest.Seq + 1
	}

	info := database.NewVersionInfo(fields)
	info.ID = newID()
	info.Seq = seq
	info.CreatedAt = gotime.Now()

	if _, err := c.collection(ColVersions).InsertOne(ctx, info); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%s: %w", fields.PolicyID, database.ErrVersionConflict)
		}
		return nil, fmt.Errorf("insert version: %w", err)
	}

	return info, nil
}

// FindVersionInfosByPolicy returns all versions of the given policy in
// reverse chronological order.
func (c *Client) FindVersionInfosByPolicy(
	ctx context.Context,
	policyID types.ID,
) ([]*database.VersionInfo, error) {
	cursor, err := c.collection(ColVersions).Find(ctx, bson.M{
		"policy_id": policyID,
	}, options.Find().SetSort(bson.D{{Key: "seq", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find versions of %s: %w", policyID, err)
	}

	var infos []*database.VersionInfo
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, fmt.Errorf("fetch versions of %s: %w", policyID, err)
	}

	return infos, nil
}

// FindVersionInfoByID returns the version of the given ID.
func (c *Client) FindVersionInfoByID(
	ctx context.Context,
	id types.ID,
) (*database.VersionInfo, error) {
	result := c.collection(ColVersions).FindOne(ctx, bson.M{
		"_id": id,
	})

	info := &database.VersionInfo{}
	if err := result.Decode(info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", id, database.ErrVersionNotFound)
		}
		return nil, fmt.Errorf("find version by id: %w", err)
	}

	return info, nil
}

// FindLatestVersionInfo returns the version with the highest sequence number
// of the given policy.
func (c *Client) FindLatestVersionInfo(
	ctx context.Context,
	policyID types.ID,
) (*database.VersionInfo, error) {
	result := c.collection(ColVersions).FindOne(ctx, bson.M{
		"policy_id": policyID,
	}, options.FindOne().SetSort(bson.D{{Key: "seq", Value: -1}}))

	info := &database.VersionInfo{}
	if err := result.Decode(info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", policyID, database.ErrVersionNotFound)
		}
		return nil, fmt.Errorf("find latest version of %s: %w", policyID, err)
	}

	return info, nil
}

// CreateCommentInfo stores the given comment.
func (c *Client) CreateCommentInfo(
	ctx context.Context,
	fields *types.CommentFields,
	mentions []types.ID,
) (*database.CommentInfo, error) {
	if fields.ParentID != nil {
		if _, err := c.FindCommentInfoByID(ctx, *fields.ParentID); err != nil {
			return nil, err
		}
	}

	info := database.NewCommentInfo(fields, mentions)
	info.ID = newID()
	info.CreatedAt = gotime.Now()

	if _, err := c.collection(ColComments).InsertOne(ctx, info); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	return info, nil
}

// FindCommentInfosByPolicy returns all comments of the given policy in
// chronological order.
func (c *Client) FindCommentInfosByPolicy(
	ctx context.Context,
	policyID types.ID,
) ([]*database.CommentInfo, error) {
	cursor, err := c.collection(ColComments).Find(ctx, bson.M{
		"policy_id": policyID,
	}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find comments of %s: %w", policyID, err)
	}

	var infos []*database.CommentInfo
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, fmt.Errorf("fetch comments of %s: %w", policyID, err)
	}

	return infos, nil
}

// FindCommentInfoByID returns the comment of the given ID.
func (c *Client) FindCommentInfoByID(
	ctx context.Context,
	id types.ID,
) (*database.CommentInfo, error) {
	result := c.collection(ColComments).FindOne(ctx, bson.M{
		"_id": id,
	})

	info := &database.CommentInfo{}
	if err := result.Decode(info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", id, database.ErrCommentNotFound)
		}
		return nil, fmt.Errorf("find comment by id: %w", err)
	}

	return info, nil
}

// ResolveCommentInfo marks the comment of the given ID as resolved. Resolving
// an already resolved comment is a no-op.
func (c *Client) ResolveCommentInfo(
	ctx context.Context,
	id types.ID,
	resolvedBy types.ID,
) (*database.CommentInfo, bool, error) {
	result := c.collection(ColComments).FindOneAndUpdate(ctx, bson.M{
		"_id":      id,
		"resolved": false,
	}, bson.M{
		"$set": bson.M{
			"resolved":    true,
			"resolved_by": resolvedBy,
			"resolved_at": gotime.Now(),
		},
	}, options.FindOneAndUpdate().SetReturnDocument(options.After))

	info := &database.CommentInfo{}
	if err := result.Decode(info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// already resolved, or missing entirely
			info, err := c.FindCommentInfoByID(ctx, id)
			return info, false, err
		}
		return nil, false, fmt.Errorf("resolve comment: %w", err)
	}

	return info, true, nil
}

func (c *Client) collection(
	name string,
	opts ...*options.CollectionOptions,
) *mongo.Collection {
	return c.client.
		Database(c.config.PolidoDatabase).
		Collection(name, opts...)
}

func newID() types.ID {
	return types.NewID()
}
