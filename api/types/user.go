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

package types

// User is a mention candidate provided by the external identity
// collaborator. Mentions embed the ID, never the display name, so renamed
// users keep resolving.
type User struct {
	// ID is the unique identifier of the user.
	ID ID `json:"id"`

	// Username is the login name of the user.
	Username string `json:"username"`

	// DisplayName is the human-readable name shown in candidate lists.
	DisplayName string `json:"display_name"`
}
