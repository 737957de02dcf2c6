package validators

import "go.mongodb.org/mongo-driver/bson"

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"reservation_no",
			"date",
			"start_time",
			"end_time",
			"room",
			"name",
			"phone",
			"headcount",
			"payment_status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"reservation_no": bson.M{
				"bsonType": "string",
				"pattern":  "^RES[0-9]{8}-[0-9]{3}$",
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  "^[0-9]{4}-[0-9]{2}-[0-9]{2}$",
			},

			"start_time": bson.M{
				"bsonType": "string",
				"pattern":  "^[0-9]{2}:[0-9]{2}$",
			},

			"end_time": bson.M{
				"bsonType": "string",
				"pattern":  "^[0-9]{2}:[0-9]{2}$",
			},

			"room": bson.M{
				"bsonType": "string",
				"enum": []string{
					"A",
					"B",
					"A+B",
				},
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"phone": bson.M{
				"bsonType":  "string",
				"minLength": 8,
				"maxLength": 20,
			},

			"headcount": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  500,
			},

			"payment_status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
