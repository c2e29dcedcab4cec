package redisdb

// Key layout. Entities are JSON blobs under "type:id" keys; likes are sorted
// sets scored by like timestamp; comments and shelves are hashes so per-post
// and per-author reads stay single-command.
//
//	user:{id}          JSON user
//	user:email:{email} user id, written with SETNX to enforce uniqueness
//	post:{id}          JSON post
//	comments:{postID}  hash commentID -> JSON comment
//	likes:{postID}     zset userID scored by like time (ms)
//	journal:{id}       JSON entry
//	shelf:{authorID}   hash bookKey -> JSON item
//	confession:{id}    JSON confession
//	letter:{id}        JSON letter

func userKey(id string) string         { return "user:" + id }
func emailKey(email string) string     { return "user:email:" + email }
func postKey(id string) string         { return "post:" + id }
func commentsKey(postID string) string { return "comments:" + postID }
func likesKey(postID string) string    { return "likes:" + postID }
func journalKey(id string) string      { return "journal:" + id }
func shelfKey(authorID string) string  { return "shelf:" + authorID }
func confessionKey(id string) string   { return "confession:" + id }
func letterKey(id string) string       { return "letter:" + id }
