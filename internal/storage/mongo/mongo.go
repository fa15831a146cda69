// Package mongo provides a MongoDB-backed implementation of the
// storage.Store interface. Each entity maps to its own collection; documents
// are converted to the typed models at this boundary.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/divvyhq/divvy/internal/models"
	"github.com/divvyhq/divvy/internal/storage"
)

// Ensure MongoStore implements storage.Store
var _ storage.Store = (*MongoStore)(nil)

const (
	collGroups      = "groups"
	collMembers     = "members"
	collExpenses    = "group_expenses"
	collSettlements = "group_settlements"
	collUsers       = "users"
)

// MongoStore implements storage.Store using MongoDB.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to MongoDB and pings it before returning a store.
func New(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(database)}, nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

type groupDoc struct {
	ID            string   `bson:"_id"`
	Name          string   `bson:"name"`
	Description   string   `bson:"description,omitempty"`
	Address       string   `bson:"address,omitempty"`
	CreatedBy     string   `bson:"created_by"`
	Status        string   `bson:"status"`
	MemberCount   int      `bson:"member_count"`
	TotalExpenses float64  `bson:"total_expenses"`
	Categories    []string `bson:"categories,omitempty"`
	CreatedAt     int64    `bson:"created_at"`
}

type memberDoc struct {
	ID           string `bson:"_id"`
	GroupID      string `bson:"group_id"`
	Name         string `bson:"name"`
	Email        string `bson:"email,omitempty"`
	Phone        string `bson:"phone,omitempty"`
	IsAdmin      bool   `bson:"is_admin"`
	IsRegistered bool   `bson:"is_registered"`
	InviteStatus string `bson:"invite_status"`
	CreatedAt    int64  `bson:"created_at"`
}

type splitDoc struct {
	MemberID string  `bson:"member_id"`
	Amount   float64 `bson:"amount"`
}

type expenseDoc struct {
	ID          string     `bson:"_id"`
	GroupID     string     `bson:"group_id"`
	Description string     `bson:"description"`
	Amount      float64    `bson:"amount"`
	Category    string     `bson:"category,omitempty"`
	Date        int64      `bson:"date"`
	PaidBy      string     `bson:"paid_by"`
	SplitType   string     `bson:"split_type"`
	Splits      []splitDoc `bson:"splits"`
	CreatedBy   string     `bson:"created_by,omitempty"`
	CreatedAt   int64      `bson:"created_at"`
}

type settlementDoc struct {
	ID           string  `bson:"_id"`
	GroupID      string  `bson:"group_id"`
	FromMemberID string  `bson:"from_member_id"`
	ToMemberID   string  `bson:"to_member_id"`
	Amount       float64 `bson:"amount"`
	Note         string  `bson:"note,omitempty"`
	Date         int64   `bson:"date"`
	CreatedBy    string  `bson:"created_by,omitempty"`
	CreatedAt    int64   `bson:"created_at"`
}

type userDoc struct {
	ID           string `bson:"_id"`
	Name         string `bson:"name"`
	Email        string `bson:"email"`
	PasswordHash string `bson:"password_hash"`
	CreatedAt    int64  `bson:"created_at"`
}

func (s *MongoStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	if group.Status == "" {
		group.Status = models.GroupStatusActive
	}
	doc := groupDoc{
		ID: group.ID, Name: group.Name, Description: group.Description,
		Address: group.Address, CreatedBy: group.CreatedBy, Status: group.Status,
		MemberCount: group.MemberCount, TotalExpenses: group.TotalExpenses,
		Categories: group.Categories, CreatedAt: group.CreatedAt,
	}
	if _, err := s.db.Collection(collGroups).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

func (s *MongoStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	var doc groupDoc
	err := s.db.Collection(collGroups).FindOne(ctx, bson.M{"_id": groupID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return &models.Group{
		ID: doc.ID, Name: doc.Name, Description: doc.Description, Address: doc.Address,
		CreatedBy: doc.CreatedBy, Status: doc.Status, MemberCount: doc.MemberCount,
		TotalExpenses: doc.TotalExpenses, Categories: doc.Categories, CreatedAt: doc.CreatedAt,
	}, nil
}

func (s *MongoStore) UpdateGroup(ctx context.Context, group *models.Group) error {
	doc := groupDoc{
		ID: group.ID, Name: group.Name, Description: group.Description,
		Address: group.Address, CreatedBy: group.CreatedBy, Status: group.Status,
		MemberCount: group.MemberCount, TotalExpenses: group.TotalExpenses,
		Categories: group.Categories, CreatedAt: group.CreatedAt,
	}
	res, err := s.db.Collection(collGroups).ReplaceOne(ctx, bson.M{"_id": group.ID}, doc)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("group %s: %w", group.ID, storage.ErrNotFound)
	}
	return nil
}

func (s *MongoStore) CreateMember(ctx context.Context, member *models.Member) error {
	if member.CreatedAt == 0 {
		member.CreatedAt = time.Now().Unix()
	}
	if member.InviteStatus == "" {
		member.InviteStatus = models.InviteStatusPending
	}
	doc := memberDoc{
		ID: member.ID, GroupID: member.GroupID, Name: member.Name, Email: member.Email,
		Phone: member.Phone, IsAdmin: member.IsAdmin, IsRegistered: member.IsRegistered,
		InviteStatus: member.InviteStatus, CreatedAt: member.CreatedAt,
	}
	if _, err := s.db.Collection(collMembers).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("member %s already exists in group %s: %w", member.ID, member.GroupID, err)
		}
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

func (s *MongoStore) GetMember(ctx context.Context, groupID, memberID string) (*models.Member, error) {
	var doc memberDoc
	err := s.db.Collection(collMembers).
		FindOne(ctx, bson.M{"_id": memberID, "group_id": groupID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("member %s: %w", memberID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return memberFromDoc(doc), nil
}

func (s *MongoStore) ListMembers(ctx context.Context, groupID string) ([]*models.Member, error) {
	cursor, err := s.db.Collection(collMembers).Find(ctx, bson.M{"group_id": groupID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer cursor.Close(ctx)

	var members []*models.Member
	for cursor.Next(ctx) {
		var doc memberDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode member: %w", err)
		}
		members = append(members, memberFromDoc(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

func (s *MongoStore) DeleteMember(ctx context.Context, groupID, memberID string) error {
	res, err := s.db.Collection(collMembers).
		DeleteOne(ctx, bson.M{"_id": memberID, "group_id": groupID})
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("member %s: %w", memberID, storage.ErrNotFound)
	}
	return nil
}

func memberFromDoc(doc memberDoc) *models.Member {
	return &models.Member{
		ID: doc.ID, GroupID: doc.GroupID, Name: doc.Name, Email: doc.Email,
		Phone: doc.Phone, IsAdmin: doc.IsAdmin, IsRegistered: doc.IsRegistered,
		InviteStatus: doc.InviteStatus, CreatedAt: doc.CreatedAt,
	}
}

func (s *MongoStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Date == 0 {
		expense.Date = expense.CreatedAt
	}
	splits := make([]splitDoc, len(expense.Splits))
	for i, split := range expense.Splits {
		splits[i] = splitDoc{MemberID: split.MemberID, Amount: split.Amount}
	}
	doc := expenseDoc{
		ID: expense.ID, GroupID: expense.GroupID, Description: expense.Description,
		Amount: expense.Amount, Category: expense.Category, Date: expense.Date,
		PaidBy: expense.PaidBy, SplitType: expense.SplitType, Splits: splits,
		CreatedBy: expense.CreatedBy, CreatedAt: expense.CreatedAt,
	}
	if _, err := s.db.Collection(collExpenses).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

func (s *MongoStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	cursor, err := s.db.Collection(collExpenses).Find(ctx, bson.M{"group_id": groupID},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer cursor.Close(ctx)

	var expenses []*models.Expense
	for cursor.Next(ctx) {
		var doc expenseDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode expense: %w", err)
		}
		splits := make([]models.Split, len(doc.Splits))
		for i, split := range doc.Splits {
			splits[i] = models.Split{MemberID: split.MemberID, Amount: split.Amount}
		}
		expenses = append(expenses, &models.Expense{
			ID: doc.ID, GroupID: doc.GroupID, Description: doc.Description,
			Amount: doc.Amount, Category: doc.Category, Date: doc.Date,
			PaidBy: doc.PaidBy, SplitType: doc.SplitType, Splits: splits,
			CreatedBy: doc.CreatedBy, CreatedAt: doc.CreatedAt,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

func (s *MongoStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}
	if settlement.Date == 0 {
		settlement.Date = settlement.CreatedAt
	}
	doc := settlementDoc{
		ID: settlement.ID, GroupID: settlement.GroupID,
		FromMemberID: settlement.FromMemberID, ToMemberID: settlement.ToMemberID,
		Amount: settlement.Amount, Note: settlement.Note, Date: settlement.Date,
		CreatedBy: settlement.CreatedBy, CreatedAt: settlement.CreatedAt,
	}
	if _, err := s.db.Collection(collSettlements).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	return nil
}

func (s *MongoStore) ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	cursor, err := s.db.Collection(collSettlements).Find(ctx, bson.M{"group_id": groupID},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements by group: %w", err)
	}
	defer cursor.Close(ctx)

	var settlements []*models.Settlement
	for cursor.Next(ctx) {
		var doc settlementDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode settlement: %w", err)
		}
		settlements = append(settlements, &models.Settlement{
			ID: doc.ID, GroupID: doc.GroupID, FromMemberID: doc.FromMemberID,
			ToMemberID: doc.ToMemberID, Amount: doc.Amount, Note: doc.Note,
			Date: doc.Date, CreatedBy: doc.CreatedBy, CreatedAt: doc.CreatedAt,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}
	user.Email = strings.ToLower(user.Email)
	doc := userDoc{
		ID: user.ID, Name: user.Name, Email: user.Email,
		PasswordHash: user.PasswordHash, CreatedAt: user.CreatedAt,
	}
	if _, err := s.db.Collection(collUsers).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, bson.M{"email": strings.ToLower(email)}, email)
}

func (s *MongoStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, bson.M{"_id": id}, id)
}

func (s *MongoStore) getUser(ctx context.Context, filter bson.M, key string) (*models.User, error) {
	var doc userDoc
	err := s.db.Collection(collUsers).FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("user %s: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &models.User{
		ID: doc.ID, Name: doc.Name, Email: doc.Email,
		PasswordHash: doc.PasswordHash, CreatedAt: doc.CreatedAt,
	}, nil
}
