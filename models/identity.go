package models

// Identity is an anonymous, durable participant identifier. Everything
// outside this table treats the id as an opaque string.
type Identity struct {
	UserID    string `json:"userId" dynamodbav:"userId"` // PK
	CreatedAt string `json:"createdAt" dynamodbav:"createdAt"`
}

// TableName returns the DynamoDB table name
func (Identity) TableName() string {
	return "Identities"
}
