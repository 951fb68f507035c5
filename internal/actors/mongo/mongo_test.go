package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rbroggi/atoll/internal/core/model"
	"github.com/rbroggi/atoll/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const testDatabase = "atoll_test"

type MongoDBTestSuite struct {
	suite.Suite
	client       *mongo.Client
	mongoAdapter *MongoDB
}

func TestMongoDBTestSuite(t *testing.T) {
	if os.Getenv("MONGODB_URL") == "" {
		t.Skip("MONGODB_URL not set")
	}
	suite.Run(t, new(MongoDBTestSuite))
}

func (suite *MongoDBTestSuite) SetupSuite() {
	clientOptions := options.Client().ApplyURI(os.Getenv("MONGODB_URL"))
	client, err := mongo.Connect(context.Background(), clientOptions)
	suite.Require().NoError(err)
	suite.client = client

	mongoAdapter, err := NewMongoDB(
		MongoDBArgs{Client: client, Database: testDatabase},
		WithNowFunc(func() time.Time { return dummyTime }),
		WithOperationTimeout(2*time.Second),
	)
	suite.Require().NoError(err)
	suite.Require().NoError(mongoAdapter.CheckConnection(context.Background()))
	suite.Require().NoError(mongoAdapter.EnsureAllIndexes(context.Background()))
	suite.mongoAdapter = mongoAdapter
}

func (suite *MongoDBTestSuite) SetupTest() {
	for _, name := range []string{
		UsersCollection, TeamsCollection, EventsCollection, EventRequestsCollection, RatingsCollection,
		FeedbacksCollection, InvitesCollection, MailCodesCollection, RepresentativeRequestsCollection,
	} {
		_, err := suite.client.Database(testDatabase).Collection(name).DeleteMany(context.Background(), bson.D{})
		suite.Require().NoError(err)
	}
}

func (suite *MongoDBTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.client.Disconnect(context.Background()))
}

func (suite *MongoDBTestSuite) insertUser(mail string) *model.User {
	user := &model.User{Mail: mail, Tokens: []string{mail + "-token"}, Roles: []model.Role{model.RoleSportsman}}
	suite.Require().NoError(suite.mongoAdapter.InsertUser(context.Background(), user))
	return user
}

func (suite *MongoDBTestSuite) TestInsertAndFindUser() {
	ctx := context.Background()
	user := suite.insertUser("jane@example.com")
	suite.False(user.ID.IsZero())
	suite.Equal(dummyTime, user.CreatedAt)

	tests := []struct {
		name  string
		query ports.UserQuery
	}{
		{name: "by id", query: ports.UserQuery{ID: user.ID}},
		{name: "by mail", query: ports.UserQuery{Mail: user.Mail}},
		{name: "by token", query: ports.UserQuery{Token: "jane@example.com-token"}},
		{name: "by absent telegram id", query: ports.UserQuery{Mail: user.Mail, TgID: model.SetTo[*int64](nil)}},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			got, err := suite.mongoAdapter.FindUser(ctx, tt.query)
			suite.Require().NoError(err)
			suite.Equal(user, got)
		})
	}

	_, err := suite.mongoAdapter.FindUser(ctx, ports.UserQuery{Mail: "nobody@example.com"})
	suite.ErrorIs(err, model.ErrNotFound)
	_, err = suite.mongoAdapter.FindUser(ctx, ports.UserQuery{})
	suite.ErrorIs(err, model.ErrEmptyFilter)

	err = suite.mongoAdapter.InsertUser(ctx, &model.User{Mail: user.Mail, Roles: []model.Role{model.RoleSportsman}})
	suite.ErrorIs(err, model.ErrDuplicate)
}

func (suite *MongoDBTestSuite) TestUpdateUserAndTokens() {
	ctx := context.Background()
	user := suite.insertUser("jane@example.com")

	err := suite.mongoAdapter.UpdateUser(ctx, model.UpdateUserArgs{ID: user.ID, Fullname: model.SetTo(ptr("Jane"))})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.mongoAdapter.PullUserToken(ctx, user.ID, user.Tokens[0]))

	got, err := suite.mongoAdapter.FindUser(ctx, ports.UserQuery{ID: user.ID})
	suite.Require().NoError(err)
	suite.Equal("Jane", *got.Fullname)
	suite.Empty(got.Tokens)

	err = suite.mongoAdapter.UpdateUser(ctx, model.UpdateUserArgs{ID: newID(), Fullname: model.SetTo(ptr("x"))})
	suite.ErrorIs(err, model.ErrNotFound)
}

func (suite *MongoDBTestSuite) TestListUsersByRoles() {
	ctx := context.Background()
	suite.insertUser("a@example.com")
	admin := &model.User{Mail: "b@example.com", Roles: []model.Role{model.RoleAdmin}}
	suite.Require().NoError(suite.mongoAdapter.InsertUser(ctx, admin))

	got, err := suite.mongoAdapter.ListUsers(ctx, ports.ListUsersQuery{Roles: []model.Role{model.RoleAdmin, model.RoleRepresentative}})
	suite.Require().NoError(err)
	suite.Require().Len(got, 1)
	suite.Equal(admin.ID, got[0].ID)

	all, err := suite.mongoAdapter.ListUsers(ctx, ports.ListUsersQuery{})
	suite.Require().NoError(err)
	suite.Len(all, 2)
}

func (suite *MongoDBTestSuite) TestCorruptRecordsAreSkippedInLists() {
	ctx := context.Background()
	suite.insertUser("a@example.com")
	_, err := suite.client.Database(testDatabase).Collection(UsersCollection).InsertOne(ctx, bson.D{{Key: "fullname", Value: "no mail"}})
	suite.Require().NoError(err)

	got, err := suite.mongoAdapter.ListUsers(ctx, ports.ListUsersQuery{})
	suite.Require().NoError(err)
	suite.Len(got, 1)
}

func (suite *MongoDBTestSuite) TestTeamMembership() {
	ctx := context.Background()
	captain := suite.insertUser("captain@example.com")
	member := suite.insertUser("member@example.com")
	team := &model.Team{Title: "t", CaptainID: captain.ID, MemberIDs: []model.ID{captain.ID}}
	suite.Require().NoError(suite.mongoAdapter.InsertTeam(ctx, team))

	suite.Require().NoError(suite.mongoAdapter.AddTeamMember(ctx, team.ID, member.ID))
	suite.Require().NoError(suite.mongoAdapter.AddTeamMember(ctx, team.ID, member.ID))
	suite.ErrorIs(suite.mongoAdapter.AddTeamMember(ctx, newID(), member.ID), model.ErrNotFound)

	got, err := suite.mongoAdapter.FindTeam(ctx, team.ID)
	suite.Require().NoError(err)
	suite.Equal([]model.ID{captain.ID, member.ID}, got.MemberIDs)

	teams, err := suite.mongoAdapter.ListTeams(ctx, ports.ListTeamsQuery{MemberID: member.ID})
	suite.Require().NoError(err)
	suite.Len(teams, 1)
}

func (suite *MongoDBTestSuite) TestInvites() {
	ctx := context.Background()
	invite := &model.Invite{FromTeamID: newID(), ToUserID: newID()}
	suite.Require().NoError(suite.mongoAdapter.InsertInvite(ctx, invite))
	err := suite.mongoAdapter.InsertInvite(ctx, &model.Invite{FromTeamID: invite.FromTeamID, ToUserID: invite.ToUserID})
	suite.ErrorIs(err, model.ErrDuplicate)

	got, err := suite.mongoAdapter.FindInvite(ctx, ports.InviteQuery{FromTeamID: invite.FromTeamID, ToUserID: invite.ToUserID})
	suite.Require().NoError(err)
	suite.Equal(invite, got)

	removed, err := suite.mongoAdapter.RemoveInvite(ctx, invite.ID)
	suite.Require().NoError(err)
	suite.True(removed)
	removed, err = suite.mongoAdapter.RemoveInvite(ctx, invite.ID)
	suite.Require().NoError(err)
	suite.False(removed)
}

func (suite *MongoDBTestSuite) TestEventSourceRequestIsUnique() {
	ctx := context.Background()
	source := newID()
	newEvent := func() *model.Event {
		return &model.Event{Title: "cup", StartDt: dummyTime, EndDt: dummyTime, TeamIDs: []model.ID{}, Timeline: []model.TimelineEntry{}, SourceRequestID: source}
	}
	suite.Require().NoError(suite.mongoAdapter.InsertEvent(ctx, newEvent()))
	suite.ErrorIs(suite.mongoAdapter.InsertEvent(ctx, newEvent()), model.ErrDuplicate)

	// events without a source request are not constrained
	for i := 0; i < 2; i++ {
		e := newEvent()
		e.SourceRequestID = ""
		suite.Require().NoError(suite.mongoAdapter.InsertEvent(ctx, e))
	}

	got, err := suite.mongoAdapter.FindEvent(ctx, ports.EventQuery{SourceRequestID: source})
	suite.Require().NoError(err)
	suite.Equal(source, got.SourceRequestID)
}

func (suite *MongoDBTestSuite) TestRatingsOrderedByPlace() {
	ctx := context.Background()
	event := newID()
	for _, place := range []int{3, 1, 2} {
		suite.Require().NoError(suite.mongoAdapter.InsertRating(ctx, &model.Rating{EventID: event, TeamID: newID(), Place: place}))
	}
	ratings, err := suite.mongoAdapter.ListRatings(ctx, ports.ListRatingsQuery{EventID: event})
	suite.Require().NoError(err)
	suite.Require().Len(ratings, 3)
	for i, r := range ratings {
		suite.Equal(i+1, r.Place)
	}
}

func (suite *MongoDBTestSuite) TestMailCodes() {
	ctx := context.Background()
	suite.Require().NoError(suite.mongoAdapter.InsertMailCode(ctx, &model.MailCode{ToMail: "a@b.c", Code: "1111", Type: model.MailCodeTypeLogin}))
	err := suite.mongoAdapter.InsertMailCode(ctx, &model.MailCode{ToMail: "d@e.f", Code: "1111", Type: model.MailCodeTypeLogin})
	suite.ErrorIs(err, model.ErrDuplicate)

	exists, err := suite.mongoAdapter.MailCodeExists(ctx, "1111")
	suite.Require().NoError(err)
	suite.True(exists)

	_, err = suite.mongoAdapter.RemoveMailCodes(ctx, ports.MailCodeQuery{})
	suite.ErrorIs(err, model.ErrEmptyFilter)

	removed, err := suite.mongoAdapter.RemoveMailCodes(ctx, ports.MailCodeQuery{ToMail: "a@b.c", ToUserID: model.SetTo[*model.ID](nil)})
	suite.Require().NoError(err)
	suite.EqualValues(1, removed)
}

func (suite *MongoDBTestSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := suite.mongoAdapter.ListUsers(ctx, ports.ListUsersQuery{})
	assert.ErrorIs(suite.T(), err, context.Canceled)
	assert.NotErrorIs(suite.T(), err, model.ErrConnectivity)
}
