// Package fixtures holds sample backend payloads and a fiber app serving them.
package fixtures

// StandardRanges is the till-date payload: explicit total and a full ladder.
// The explicit total (130) exceeds the bucket sum (118).
const StandardRanges = `{
  "total_users": 130,
  "ranges": [
    {"reward_from_range": "0", "reward_to_range": "50", "total_users": "40"},
    {"reward_from_range": "51", "reward_to_range": "100", "total_users": "25"},
    {"reward_from_range": "101", "reward_to_range": "400", "total_users": "0"},
    {"reward_from_range": "401", "reward_to_range": "700", "total_users": "12"},
    {"reward_from_range": "701", "reward_to_range": "1000", "total_users": "9"},
    {"reward_from_range": "1001", "reward_to_range": "4000", "total_users": "15"},
    {"reward_from_range": "4001", "reward_to_range": "7000", "total_users": "7"},
    {"reward_from_range": "7001", "reward_to_range": "15000", "total_users": "4"},
    {"reward_from_range": "15001", "reward_to_range": "23000", "total_users": "2"},
    {"reward_from_range": "23001", "reward_to_range": "31000", "total_users": "1"},
    {"reward_from_range": "31001", "reward_to_range": "62000", "total_users": "1"},
    {"reward_from_range": "62001", "reward_to_range": "", "total_users": "2"}
  ]
}`

// NestedRanges is a per-date payload; 0-50 appears on both dates (3 + 5).
const NestedRanges = `[
  {"date": "2024-03-01", "ranges": [
    {"reward_from_range": "0", "reward_to_range": "50", "total_users": 3},
    {"reward_from_range": "51", "reward_to_range": "100", "total_users": 2}
  ]},
  {"date": "2024-03-02", "ranges": [
    {"reward_from_range": "0", "reward_to_range": "50", "total_users": 5},
    {"reward_from_range": "101", "reward_to_range": "400", "total_users": 1},
    {"reward_from_range": "51", "reward_to_range": "100", "total_users": 0}
  ]}
]`

// CombinedRanges carries both the daily breakdown and an aggregate whose
// distinct-user count (120) differs from its bucket sum (115).
const CombinedRanges = `{
  "daily": [
    {"date": "2024-03-01", "ranges": [
      {"reward_from_range": "0", "reward_to_range": "50", "total_users": 60},
      {"reward_from_range": "51", "reward_to_range": "100", "total_users": 20}
    ]},
    {"date": "2024-03-02", "ranges": [
      {"reward_from_range": "0", "reward_to_range": "50", "total_users": 30},
      {"reward_from_range": "101", "reward_to_range": "400", "total_users": 5}
    ]}
  ],
  "aggregated": {
    "unique_users": 120,
    "total_points": 5400,
    "average_points": 45.0,
    "ranges": [
      {"reward_from_range": "51", "reward_to_range": "100", "total_users": 20},
      {"reward_from_range": "0", "reward_to_range": "50", "total_users": 90},
      {"reward_from_range": "101", "reward_to_range": "400", "total_users": 5}
    ]
  }
}`

// FlatRanges is an array of range objects with numeric bounds.
const FlatRanges = `[
  {"reward_from_range": 0, "reward_to_range": 50, "total_users": 12},
  {"reward_from_range": "51", "reward_to_range": "100", "total_users": "7"},
  {"reward_from_range": 101, "reward_to_range": 400, "total_users": 0},
  {"reward_from_range": "62001", "reward_to_range": null, "total_users": 1}
]`

// EncodedRanges uses pipe and dash encoded range strings.
const EncodedRanges = `[
  {"range": "0-50", "total_users": "9"},
  {"range": "51|100", "total_users": "4"},
  {"range": "62001+", "total_users": "2"}
]`

// NestedTraffic is a per-date page traffic payload using both the current
// and the legacy name of the landing page.
const NestedTraffic = `[
  {"date": "2024-03-01", "pages": [
    {"page": "landing_page", "total_users": 10, "old_users": 3, "new_users": 5, "first_time_users": 2, "created": 1},
    {"page": "credential", "total_users": 4, "old": 1, "new": 2, "first_time": 1},
    {"page": "dashboard", "total_users": 6, "old_users": 4, "new_users": 2, "first_time_users": 0, "visitor_conversions": 1}
  ]},
  {"date": "2024-03-02", "data": [
    {"page": "landing_page", "total_users": 8, "old_users": 2, "new_users": 4, "first_time_users": 2},
    {"page": "rewards", "total_users": 0, "old_users": 0, "new_users": 0, "first_time_users": 0}
  ]}
]`

// FlatTraffic is an undated page traffic payload.
const FlatTraffic = `[
  {"page": "credential", "total_users": "5", "old_users": "1", "new_users": "3", "first_time_users": "1"},
  {"page": "landing_page", "total_users": 15, "old_users": 5, "new_users": 6, "first_time_users": 4, "created_users": 2, "visitor_converted": 3},
  {"page": "profile", "total_users": 3, "old_users": 3, "new_users": 0, "first_time_users": 0}
]`

// TopEarners is the leaderboard payload.
const TopEarners = `[
  {"rank": 1, "linkedId": "L-100", "developerId": "dev_ana", "firstName": "Ana", "lastName": "Rao", "totalRewardPoints": 98200, "hasBharatPass": true, "mobile": "9800000001", "totalEventCount": 412},
  {"rank": 2, "linkedId": "L-101", "developerId": "dev_kiran", "firstName": "Kiran", "totalRewardPoints": 75010, "totalEventCount": 301},
  {"rank": 3, "linkedId": "L-102", "developerId": "dev_sam", "totalRewardPoints": 64000},
  {"rank": 4, "linkedId": "L-103", "developerId": "dev_lee", "firstName": "Lee", "lastName": "Park", "totalRewardPoints": 30999, "hasBharatPass": true},
  {"rank": 5, "linkedId": "L-104", "developerId": "dev_noor", "firstName": "Noor", "lastName": "Shah, Jr.", "totalRewardPoints": 1200}
]`
