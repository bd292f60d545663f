package graphql

// Schema is the GraphQL schema served at /graphql. User exposes an
// explicit allow-list of stored fields; the password hash has no API
// representation at all.
const Schema = `
	schema {
		query: Query
		mutation: Mutation
	}

	type Query {
		user(id: ID!): User!
		users: [User!]!
		me: User!
	}

	type Mutation {
		createUser(input: CreateUserInput!): User!
		updateUser(id: ID!, input: UpdateUserInput!): User!
		deleteUser(id: ID!): User!
		login(input: LoginInput!): User!
		logout: Boolean!
	}

	type User {
		id: ID!
		email: String!
		createdAt: String!
		updatedAt: String!
	}

	input CreateUserInput {
		email: String!
		password: String!
	}

	input UpdateUserInput {
		email: String
		password: String
	}

	input LoginInput {
		email: String!
		password: String!
	}
`
