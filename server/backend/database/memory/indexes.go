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

package memory

import "github.com/hashicorp/go-memdb"

var (
	tblVersions = "versions"
	tblComments = "comments"
)

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tblVersions: {
			Name: tblVersions,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
				"policy_id": {
					Name:    "policy_id",
					Indexer: &memdb.StringFieldIndex{Field: "PolicyID"},
				},
				"policy_id_seq": {
					Name:   "policy_id_seq",
					Unique: true,
					Indexer: &memdb.CompoundIndex{
						Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "PolicyID"},
							&memdb.IntFieldIndex{Field: "Seq"},
						},
					},
				},
			},
		},
		tblComments: {
			Name: tblComments,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
				"policy_id": {
					Name:    "policy_id",
					Indexer: &memdb.StringFieldIndex{Field: "PolicyID"},
				},
				"policy_id_created_at": {
					Name: "policy_id_created_at",
					Indexer: &memdb.CompoundIndex{
						Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "PolicyID"},
							&memdb.TimeFieldIndex{Field: "CreatedAt"},
						},
					},
				},
			},
		},
	},
}
