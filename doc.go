// Package dynamoval converts between Go values and DynamoDB attribute
// values.
//
// DynamoDB transmits every value as a tagged union of ten shapes:
// numbers, strings, booleans, binary data, an explicit null, maps,
// lists, and three kinds of sets. [AttributeValue] models that union
// exactly, and [Marshal] and [Unmarshal] move typed Go values in and
// out of it using reflection, the way encoding/json does:
//
//	type User struct {
//		ID    string   `dynamo:"id"`
//		Age   uint8    `dynamo:"age"`
//		Roles []string `dynamo:"roles,stringset"`
//	}
//
//	item, err := dynamoval.MarshalItem(User{ID: "u-1", Age: 34, Roles: []string{"admin"}})
//	...
//	var u User
//	err = dynamoval.UnmarshalItem(item, &u)
//
// Numbers are carried as decimal text end to end, so values that
// exceed float64 precision survive a round trip through this package
// byte for byte.
//
// Decoding errors identify where in the input the mismatch occurred:
// decoding {"user": {"age": "x"}} into a nested struct with a numeric
// age field fails with an error whose Path is "user.age".
//
// The awssdk and lambdaevent subpackages convert [AttributeValue] to
// and from the attribute value representations used by the AWS SDK for
// Go v2 and by Lambda DynamoDB stream events.
package dynamoval
